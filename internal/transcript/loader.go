package transcript

import (
	"context"
	"fmt"
	"strings"

	"dynamocards-backend/internal/logger"
)

// Loader turns a video URL into chunks.
type Loader struct {
	source   Source
	splitter *Splitter
	cache    Cache
	counter  TokenCounter
	verbose  bool
}

type LoaderOption func(*Loader)

// WithCache consults and fills cache around the source.
func WithCache(c Cache) LoaderOption {
	return func(l *Loader) { l.cache = c }
}

// WithTokenCounter reports the model token total of the chunks in verbose mode.
func WithTokenCounter(tc TokenCounter) LoaderOption {
	return func(l *Loader) { l.counter = tc }
}

func WithVerbose(verbose bool) LoaderOption {
	return func(l *Loader) { l.verbose = verbose }
}

func NewLoader(source Source, splitter *Splitter, opts ...LoaderOption) *Loader {
	l := &Loader{source: source, splitter: splitter}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load validates videoURL, fetches its transcript and splits it. It fails
// with ErrNoTranscript when the transcript yields no text.
func (l *Loader) Load(ctx context.Context, videoURL string) ([]Chunk, error) {
	videoID, err := ParseVideoURL(videoURL)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if chunks, ok := l.cache.Get(ctx, videoID); ok && len(chunks) > 0 {
			logger.Debug("transcript cache hit", "video_id", videoID, "chunks", len(chunks))
			return chunks, nil
		}
	}

	video, err := l.source.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	chunks := BuildChunks(l.splitter, video)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: video %s has an empty transcript", ErrNoTranscript, videoID)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, videoID, chunks); err != nil {
			logger.Warn("failed to cache transcript", "video_id", videoID, "error", err)
		}
	}

	if l.verbose {
		l.report(ctx, chunks)
	}
	return chunks, nil
}

// BuildChunks joins the transcript segments with spaces and splits the text.
func BuildChunks(splitter *Splitter, video *Video) []Chunk {
	text := strings.Join(video.Segments, " ")
	pieces := splitter.Split(text)

	chunks := make([]Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = Chunk{Index: i, Text: p, Source: video.Metadata}
	}
	return chunks
}

func (l *Loader) report(ctx context.Context, chunks []Chunk) {
	meta := chunks[0].Source
	args := []any{
		"author", meta.Author,
		"length", meta.LengthSeconds,
		"title", meta.Title,
		"chunks", len(chunks),
	}

	if l.counter != nil {
		total := 0
		for _, c := range chunks {
			n, err := l.counter.CountTokens(ctx, c.Text)
			if err != nil {
				logger.Warn("token count failed", "video_id", meta.VideoID, "error", err)
				total = -1
				break
			}
			total += n
		}
		if total >= 0 {
			args = append(args, "total_tokens", total)
		}
	}

	logger.Info("transcript loaded", args...)
}
