package services

import (
	"context"
	"fmt"
	"strings"

	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/telemetry"
	"dynamocards-backend/internal/transcript"
)

// stuffLimit is the largest chunk count summarized in a single call.
const stuffLimit = 5

const summaryPrompt = `Write a concise summary of the following:


"%s"


CONCISE SUMMARY:`

// SummarizationService produces a short summary of a transcript.
type SummarizationService struct {
	generator concepts.Generator
	metrics   *telemetry.Metrics
}

// NewSummarizationService creates a new summarization service
func NewSummarizationService(generator concepts.Generator, metrics *telemetry.Metrics) *SummarizationService {
	return &SummarizationService{
		generator: generator,
		metrics:   metrics,
	}
}

// SummarizeChunks summarizes short transcripts in one call ("stuff") and longer
// ones by summarizing every chunk first and then the partial summaries
// ("map-reduce").
func (ss *SummarizationService) SummarizeChunks(ctx context.Context, chunks []transcript.Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: nothing to summarize", concepts.ErrInvalidArgument)
	}

	if len(chunks) <= stuffLimit {
		return ss.summarize(ctx, joinChunks(chunks))
	}

	logger.Info("summarizing with map-reduce", "chunks", len(chunks))
	partials := make([]string, 0, len(chunks))
	for i, c := range chunks {
		s, err := ss.summarize(ctx, c.Text)
		if err != nil {
			return "", fmt.Errorf("failed to summarize chunk %d: %w", i, err)
		}
		partials = append(partials, s)
	}
	return ss.summarize(ctx, strings.Join(partials, "\n\n"))
}

func (ss *SummarizationService) summarize(ctx context.Context, text string) (string, error) {
	out, err := ss.generator.Generate(ctx, fmt.Sprintf(summaryPrompt, text))
	ss.metrics.RecordModelCall("summarize", err == nil)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func joinChunks(chunks []transcript.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}
