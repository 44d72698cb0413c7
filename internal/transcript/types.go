// Package transcript loads a video's transcript and cuts it into fixed-size
// chunks that carry the video's metadata.
package transcript

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidURL means the locator is not an http(s) URL naming a video.
	ErrInvalidURL = errors.New("invalid video url")
	// ErrNoTranscript means the video exists but has no usable transcript.
	ErrNoTranscript = errors.New("no transcript available")
	// ErrFetchFailed wraps failures talking to the retrieval service.
	ErrFetchFailed = errors.New("transcript retrieval failed")
)

// Metadata describes the video a chunk came from.
type Metadata struct {
	VideoID       string `json:"video_id" bson:"video_id"`
	URL           string `json:"url" bson:"url"`
	Author        string `json:"author" bson:"author"`
	Title         string `json:"title" bson:"title"`
	LengthSeconds int    `json:"length" bson:"length"`
}

// Chunk is one contiguous span of transcript text. Chunks are never mutated
// after the loader returns them.
type Chunk struct {
	Index  int      `json:"index"`
	Text   string   `json:"text"`
	Source Metadata `json:"source"`
}

// Video is what a Source returns: metadata plus ordered transcript segments.
type Video struct {
	Metadata Metadata
	Segments []string
}

// Source retrieves a video's metadata and transcript.
type Source interface {
	Fetch(ctx context.Context, videoID string) (*Video, error)
}

// Cache stores split chunks by video id.
type Cache interface {
	Get(ctx context.Context, videoID string) ([]Chunk, bool)
	Set(ctx context.Context, videoID string, chunks []Chunk) error
}

// TokenCounter reports the model-side token count of a text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

func lengthSeconds(d time.Duration) int {
	return int(d / time.Second)
}
