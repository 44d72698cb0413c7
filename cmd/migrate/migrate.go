package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"dynamocards-backend/internal/config"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/services"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/migrate <command>")
		fmt.Println("Commands:")
		fmt.Println("  ensure-indexes  - Create the indexes of the analyses collection")
		fmt.Println("  prune           - Delete analyses older than ANALYSIS_RETENTION_DAYS once")
		os.Exit(1)
	}

	command := os.Args[1]

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg)

	if !cfg.MongoEnabled() {
		log.Fatal("MONGO_URI is not set")
	}

	// Connecting creates the indexes
	client, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	switch command {
	case "ensure-indexes":
		fmt.Println("Indexes are up to date.")

	case "prune":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cleanup := services.NewCleanupService(services.NewMongoAnalysisStore(client, cfg), cfg.AnalysisRetentionDays)
		deleted, err := cleanup.Prune(ctx)
		if err != nil {
			log.Fatalf("Prune failed: %v", err)
		}
		fmt.Printf("Deleted %d analyses older than %d days\n", deleted, cfg.AnalysisRetentionDays)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}
