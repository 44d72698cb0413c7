package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/telemetry"
	"dynamocards-backend/internal/transcript"
	"dynamocards-backend/models"
	"dynamocards-backend/utils"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// ChunkLoader turns a video URL into transcript chunks.
type ChunkLoader interface {
	Load(ctx context.Context, videoURL string) ([]transcript.Chunk, error)
}

// ConceptExtractor turns chunks into key concept records.
type ConceptExtractor interface {
	Extract(ctx context.Context, chunks []transcript.Chunk, sampleSize *int) (*concepts.Result, error)
}

// Summarizer turns chunks into a short summary.
type Summarizer interface {
	SummarizeChunks(ctx context.Context, chunks []transcript.Chunk) (string, error)
}

// Enqueuer hands a pending analysis to the background worker.
type Enqueuer interface {
	EnqueueAnalysis(ctx context.Context, analysisID string) error
}

// AnalysisService runs the loader and the extractor for one video and keeps
// the history of runs when a store is configured.
type AnalysisService struct {
	loader     ChunkLoader
	extractor  ConceptExtractor
	summarizer Summarizer
	store      AnalysisStore
	queue      Enqueuer
	metrics    *telemetry.Metrics
	now        func() time.Time
	newID      func() string
}

type AnalysisOption func(*AnalysisService)

// WithStore persists every analysis in store.
func WithStore(store AnalysisStore) AnalysisOption {
	return func(s *AnalysisService) { s.store = store }
}

// WithQueue enables asynchronous analysis.
func WithQueue(q Enqueuer) AnalysisOption {
	return func(s *AnalysisService) { s.queue = q }
}

func WithSummarizer(sum Summarizer) AnalysisOption {
	return func(s *AnalysisService) { s.summarizer = sum }
}

func WithAnalysisMetrics(m *telemetry.Metrics) AnalysisOption {
	return func(s *AnalysisService) { s.metrics = m }
}

func NewAnalysisService(loader ChunkLoader, extractor ConceptExtractor, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		loader:    loader,
		extractor: extractor,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AsyncEnabled reports whether Submit can be used.
func (s *AnalysisService) AsyncEnabled() bool {
	return s.store != nil && s.queue != nil
}

// HistoryEnabled reports whether Get and Recent can be used.
func (s *AnalysisService) HistoryEnabled() bool {
	return s.store != nil
}

// Analyze runs a complete analysis in the caller's goroutine. A failure to
// persist the result is logged and does not fail the request.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	a := s.newAnalysis(req, models.AnalysisProcessing)

	runErr := s.run(ctx, a)
	if s.store != nil {
		// The request context may already be cancelled; the record is still written.
		saveCtx, cancel := utils.Detached(ctx)
		if err := s.store.Create(saveCtx, a); err != nil {
			logger.Error("failed to save analysis", "analysis_id", a.ID, "error", err)
		}
		cancel()
	}
	if runErr != nil {
		return nil, runErr
	}
	return a, nil
}

// Submit validates the request, stores a pending analysis and queues it.
func (s *AnalysisService) Submit(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	if !s.AsyncEnabled() {
		return nil, ErrStoreDisabled
	}
	if _, err := transcript.ParseVideoURL(req.YoutubeLink); err != nil {
		return nil, err
	}
	if req.SampleSize != nil && *req.SampleSize <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive, got %d", concepts.ErrInvalidArgument, *req.SampleSize)
	}

	a := s.newAnalysis(req, models.AnalysisPending)
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.queue.EnqueueAnalysis(ctx, a.ID); err != nil {
		s.fail(a, err)
		if uerr := s.store.Update(ctx, a); uerr != nil {
			logger.Error("failed to mark analysis failed", "analysis_id", a.ID, "error", uerr)
		}
		return nil, fmt.Errorf("failed to queue analysis: %w", err)
	}

	logger.Info("analysis queued", "analysis_id", a.ID, "video_url", a.VideoURL)
	return a, nil
}

// RunPending executes a queued analysis and records its outcome. Analyses that
// are no longer pending are left untouched.
func (s *AnalysisService) RunPending(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrStoreDisabled
	}
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != models.AnalysisPending {
		logger.Warn("skipping analysis that is not pending", "analysis_id", id, "status", a.Status)
		return nil
	}

	a.Status = models.AnalysisProcessing
	a.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, a); err != nil {
		return err
	}

	runErr := s.run(ctx, a)
	saveCtx, cancel := utils.Detached(ctx)
	defer cancel()
	if err := s.store.Update(saveCtx, a); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// Summarize loads the transcript and summarizes it.
func (s *AnalysisService) Summarize(ctx context.Context, req models.SummarizeRequest) (string, error) {
	if s.summarizer == nil {
		return "", errors.New("summarizer is not configured")
	}
	chunks, err := s.loader.Load(ctx, req.YoutubeLink)
	if err != nil {
		return "", err
	}
	return s.summarizer.SummarizeChunks(ctx, chunks)
}

func (s *AnalysisService) Get(ctx context.Context, id string) (*models.Analysis, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	return s.store.Get(ctx, id)
}

// Recent lists the latest analyses without their concepts. limit is clamped to [1, 100].
func (s *AnalysisService) Recent(ctx context.Context, limit int) ([]models.Analysis, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.store.Recent(ctx, limit)
}

func (s *AnalysisService) newAnalysis(req models.AnalyzeRequest, status models.AnalysisStatus) *models.Analysis {
	now := s.now().UTC()
	a := &models.Analysis{
		ID:          s.newID(),
		VideoURL:    req.YoutubeLink,
		SampleSize:  req.SampleSize,
		KeyConcepts: []concepts.Record{},
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if id, err := transcript.ParseVideoURL(req.YoutubeLink); err == nil {
		a.VideoID = id
	}
	return a
}

// run loads and extracts into a, setting its final status.
func (s *AnalysisService) run(ctx context.Context, a *models.Analysis) error {
	start := s.now()

	chunks, err := s.loader.Load(ctx, a.VideoURL)
	if err != nil {
		s.fail(a, err)
		s.metrics.RecordAnalysis(s.now().Sub(start).Seconds(), 0, string(a.Status))
		return err
	}
	meta := chunks[0].Source
	a.VideoID = meta.VideoID
	a.Title = meta.Title
	a.Author = meta.Author
	a.LengthSeconds = meta.LengthSeconds

	result, err := s.extractor.Extract(ctx, chunks, a.SampleSize)
	if err != nil {
		s.fail(a, err)
		s.metrics.RecordAnalysis(s.now().Sub(start).Seconds(), 0, string(a.Status))
		return err
	}

	now := s.now().UTC()
	a.Plan = &result.Plan
	a.KeyConcepts = result.Concepts
	a.Usage = &result.Usage
	a.Status = models.AnalysisCompleted
	a.UpdatedAt = now
	a.CompletedAt = &now
	s.metrics.RecordAnalysis(now.Sub(start).Seconds(), result.Usage.TotalCost, string(a.Status))
	return nil
}

func (s *AnalysisService) fail(a *models.Analysis, err error) {
	a.Status = models.AnalysisFailed
	a.ErrorMessage = err.Error()
	a.UpdatedAt = s.now().UTC()
}
