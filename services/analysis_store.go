package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dynamocards-backend/internal/config"
	"dynamocards-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned for unknown analysis ids.
	ErrNotFound = errors.New("analysis not found")
	// ErrStoreDisabled is returned by features that need persistence when no
	// store is configured.
	ErrStoreDisabled = errors.New("analysis history is not configured")
)

// AnalysisStore persists analysis runs.
type AnalysisStore interface {
	Create(ctx context.Context, a *models.Analysis) error
	Update(ctx context.Context, a *models.Analysis) error
	Get(ctx context.Context, id string) (*models.Analysis, error)
	Recent(ctx context.Context, limit int) ([]models.Analysis, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MongoAnalysisStore keeps analyses in the "analyses" collection.
type MongoAnalysisStore struct {
	col *mongo.Collection
}

func NewMongoAnalysisStore(client *mongo.Client, cfg *config.Config) *MongoAnalysisStore {
	return &MongoAnalysisStore{col: client.Database(cfg.DBName).Collection(config.AnalysesCollection)}
}

func (s *MongoAnalysisStore) Create(ctx context.Context, a *models.Analysis) error {
	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert analysis %s: %w", a.ID, err)
	}
	return nil
}

func (s *MongoAnalysisStore) Update(ctx context.Context, a *models.Analysis) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return fmt.Errorf("update analysis %s: %w", a.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoAnalysisStore) Get(ctx context.Context, id string) (*models.Analysis, error) {
	var a models.Analysis
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find analysis %s: %w", id, err)
	}
	return &a, nil
}

func (s *MongoAnalysisStore) Recent(ctx context.Context, limit int) ([]models.Analysis, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"key_concepts": 0, "usage.groups": 0})

	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer cursor.Close(ctx)

	analyses := []models.Analysis{}
	if err := cursor.All(ctx, &analyses); err != nil {
		return nil, fmt.Errorf("decode analyses: %w", err)
	}
	return analyses, nil
}

func (s *MongoAnalysisStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete analyses before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return res.DeletedCount, nil
}
