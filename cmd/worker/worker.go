package main

import (
	"context"
	"log"

	"dynamocards-backend/internal/app"
	"dynamocards-backend/internal/config"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/queue"
	"dynamocards-backend/internal/telemetry"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	if !cfg.RedisEnabled() || !cfg.MongoEnabled() {
		log.Fatal("The worker needs REDIS_URL and MONGO_URI")
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Metrics disabled: %v", err)
	}

	deps, err := app.Build(context.Background(), cfg, metrics)
	if err != nil {
		log.Fatal("Failed to initialize pipeline:", err)
	}
	defer deps.Close()

	redisOpt, err := config.RedisOptions(cfg)
	if err != nil {
		log.Fatal("Failed to configure queue:", err)
	}
	connOpt := queue.RedisConnOpt(redisOpt)

	// Model calls are rate limited per process, so a small pool is enough
	server := asynq.NewServer(
		connOpt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(deps.AnalysisService(nil, metrics))

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskRunAnalysis, processor.ProcessAnalysis)

	log.Println("Starting Asynq worker...")
	log.Printf("   Concurrency: 4")
	log.Printf("   Redis: %s", connOpt.Addr)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
