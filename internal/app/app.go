// Package app wires the analysis pipeline from configuration. The HTTP server
// and the queue worker build the same pipeline through it.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"dynamocards-backend/internal/ai"
	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/internal/config"
	"dynamocards-backend/internal/telemetry"
	"dynamocards-backend/internal/transcript"
	"dynamocards-backend/services"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Deps holds the shared clients and the services built on them. Redis and
// Mongo are nil when not configured.
type Deps struct {
	Gemini        *ai.GeminiClient
	Redis         *redis.Client
	Mongo         *mongo.Client
	Store         services.AnalysisStore
	Loader        *transcript.Loader
	Extractor     *concepts.Extractor
	Summarization *services.SummarizationService

	closers []func()
}

// Build connects the configured backends and assembles the pipeline.
func Build(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*Deps, error) {
	d := &Deps{}

	gemini, err := ai.NewGeminiClient(ctx, cfg, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	d.Gemini = gemini
	d.closers = append(d.closers, func() { gemini.Close() })

	if cfg.RedisEnabled() {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Redis = rdb
		d.closers = append(d.closers, func() { rdb.Close() })
	}

	if cfg.MongoEnabled() {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Mongo = mongoClient
		d.Store = services.NewMongoAnalysisStore(mongoClient, cfg)
		d.closers = append(d.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			mongoClient.Disconnect(ctx)
		})
	}

	source := transcript.NewYouTubeSource(cfg.TranscriptLanguage, &http.Client{Timeout: 30 * time.Second})
	loaderOpts := []transcript.LoaderOption{transcript.WithVerbose(cfg.VerboseAccounting)}
	if cfg.CountTokens {
		loaderOpts = append(loaderOpts, transcript.WithTokenCounter(gemini))
	}
	if d.Redis != nil && cfg.TranscriptCacheTTL > 0 {
		ttl := time.Duration(cfg.TranscriptCacheTTL) * time.Minute
		loaderOpts = append(loaderOpts, transcript.WithCache(
			transcript.NewRedisCache(d.Redis, cfg.TranscriptLanguage, cfg.ChunkSize, ttl, metrics)))
	}
	d.Loader = transcript.NewLoader(source, transcript.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap), loaderOpts...)

	d.Extractor = concepts.NewExtractor(gemini,
		concepts.WithPricing(ai.Pricing{InputPer1K: cfg.InputCostPer1K, OutputPer1K: cfg.OutputCostPer1K}),
		concepts.WithVerbose(cfg.VerboseAccounting),
		concepts.WithMetrics(metrics),
	)
	d.Summarization = services.NewSummarizationService(gemini, metrics)

	log.Printf("Pipeline ready: model=%s redis=%t mongo=%t", gemini.ModelName(), d.Redis != nil, d.Mongo != nil)
	return d, nil
}

// AnalysisService builds the service over the pipeline. q may be nil.
func (d *Deps) AnalysisService(q services.Enqueuer, metrics *telemetry.Metrics) *services.AnalysisService {
	opts := []services.AnalysisOption{
		services.WithSummarizer(d.Summarization),
		services.WithAnalysisMetrics(metrics),
	}
	if d.Store != nil {
		opts = append(opts, services.WithStore(d.Store))
	}
	if q != nil {
		opts = append(opts, services.WithQueue(q))
	}
	return services.NewAnalysisService(d.Loader, d.Extractor, opts...)
}

// Close releases the clients in reverse order of creation.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}
