package models

import (
	"time"

	"dynamocards-backend/internal/concepts"
)

type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// Analysis is one run of the concept extraction over a video.
type Analysis struct {
	ID            string              `bson:"_id" json:"id"`
	VideoURL      string              `bson:"video_url" json:"video_url"`
	VideoID       string              `bson:"video_id,omitempty" json:"video_id,omitempty"`
	Title         string              `bson:"title,omitempty" json:"title,omitempty"`
	Author        string              `bson:"author,omitempty" json:"author,omitempty"`
	LengthSeconds int                 `bson:"length,omitempty" json:"length,omitempty"`
	SampleSize    *int                `bson:"sample_size,omitempty" json:"sample_size,omitempty"` // as requested; nil means derived
	Plan          *concepts.GroupPlan `bson:"plan,omitempty" json:"plan,omitempty"`
	KeyConcepts   []concepts.Record   `bson:"key_concepts" json:"key_concepts"`
	Usage         *concepts.Usage     `bson:"usage,omitempty" json:"usage,omitempty"`
	Status        AnalysisStatus      `bson:"status" json:"status"`
	ErrorMessage  string              `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
	CompletedAt   *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// AnalyzeRequest is the body of the analysis endpoints.
type AnalyzeRequest struct {
	YoutubeLink string `json:"youtube_link" binding:"required"`
	SampleSize  *int   `json:"sample_size,omitempty"`
}

// SummarizeRequest is the body of the summary endpoint.
type SummarizeRequest struct {
	YoutubeLink string `json:"youtube_link" binding:"required"`
}

// AnalyzeResponse is the synchronous analysis reply.
type AnalyzeResponse struct {
	KeyConcepts []concepts.Record `json:"key_concepts"`
}
