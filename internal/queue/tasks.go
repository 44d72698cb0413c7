package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/transcript"
)

const (
	TaskRunAnalysis = "analysis:run"

	analysisQueue   = "default"
	analysisTimeout = 10 * time.Minute
)

type AnalysisPayload struct {
	AnalysisID string `json:"analysis_id"`
}

// NewAnalysisTask creates the task for one stored analysis. Analyses are not
// retried: a failed run is recorded on the analysis itself.
func NewAnalysisTask(analysisID string) (*asynq.Task, error) {
	payload, err := json.Marshal(AnalysisPayload{AnalysisID: analysisID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskRunAnalysis,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(analysisTimeout),
		asynq.Queue(analysisQueue),
	), nil
}

// Client enqueues analysis tasks.
type Client struct {
	client *asynq.Client
}

func NewClient(opt asynq.RedisConnOpt) *Client {
	return &Client{client: asynq.NewClient(opt)}
}

// EnqueueAnalysis queues the analysis with the given id.
func (c *Client) EnqueueAnalysis(ctx context.Context, analysisID string) error {
	task, err := NewAnalysisTask(analysisID)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskRunAnalysis, err)
	}
	logger.Debug("task enqueued", "task_id", info.ID, "queue", info.Queue, "analysis_id", analysisID)
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// AnalysisRunner executes a stored pending analysis.
type AnalysisRunner interface {
	RunPending(ctx context.Context, analysisID string) error
}

// Task handlers
type TaskProcessor struct {
	runner AnalysisRunner
}

func NewTaskProcessor(runner AnalysisRunner) *TaskProcessor {
	return &TaskProcessor{runner: runner}
}

func (p *TaskProcessor) ProcessAnalysis(ctx context.Context, t *asynq.Task) error {
	var payload AnalysisPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if payload.AnalysisID == "" {
		return fmt.Errorf("missing analysis id: %w", asynq.SkipRetry)
	}

	logger.Info("processing analysis", "analysis_id", payload.AnalysisID)
	if err := p.runner.RunPending(ctx, payload.AnalysisID); err != nil {
		if permanent(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.Info("analysis processed", "analysis_id", payload.AnalysisID)
	return nil
}

// permanent reports errors that would fail the same way on every attempt.
func permanent(err error) bool {
	return errors.Is(err, concepts.ErrInvalidArgument) ||
		errors.Is(err, concepts.ErrMalformedOutput) ||
		errors.Is(err, transcript.ErrInvalidURL) ||
		errors.Is(err, transcript.ErrNoTranscript)
}

// RedisConnOpt adapts go-redis options to the asynq connection options.
func RedisConnOpt(opt *redis.Options) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}
}
