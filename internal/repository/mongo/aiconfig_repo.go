package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const aiConfigCollectionName = "ai_configurations"

// mongoAIConfigRepository implements repository.AIConfigRepository
type mongoAIConfigRepository struct {
	collection *mongo.Collection
}

// NewMongoAIConfigRepository creates a new AIConfig repository backed by MongoDB.
func NewMongoAIConfigRepository(db *mongo.Database) repository.AIConfigRepository {
	return &mongoAIConfigRepository{
		collection: db.Collection(aiConfigCollectionName),
	}
}

// Upsert writes the configuration row for cfg.Functionality, inserting it on
// first write. The unique index on functionality guarantees one row per
// functionality even under concurrent upserts.
func (r *mongoAIConfigRepository) Upsert(ctx context.Context, cfg *domain.AIConfiguration) error {
	if cfg.Functionality == "" {
		return errors.New("ai configuration requires a functionality key")
	}

	cfg.UpdatedAt = time.Now().UTC()

	filter := bson.M{"functionality": cfg.Functionality}
	update := bson.M{
		"$set": bson.M{
			"provider":    cfg.Provider,
			"model":       cfg.Model,
			"max_tokens":  cfg.MaxTokens,
			"temperature": cfg.Temperature,
			"is_enabled":  cfg.IsEnabled,
			"updatedAt":   cfg.UpdatedAt,
		},
		"$setOnInsert": bson.M{"functionality": cfg.Functionality},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Concurrent first-writes race on the unique index; the row exists
			// now, so the caller can simply retry.
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByFunctionality retrieves the configuration for one functionality.
func (r *mongoAIConfigRepository) GetByFunctionality(ctx context.Context, functionality string) (*domain.AIConfiguration, error) {
	var cfg domain.AIConfiguration
	err := r.collection.FindOne(ctx, bson.M{"functionality": functionality}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// GetAll retrieves every configuration row.
func (r *mongoAIConfigRepository) GetAll(ctx context.Context) ([]domain.AIConfiguration, error) {
	var configs []domain.AIConfiguration
	findOptions := options.Find().SetSort(bson.D{{Key: "functionality", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &configs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return configs, nil
}

// EnsureAIConfigIndexes creates necessary indexes for the ai_configurations collection.
func EnsureAIConfigIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "functionality", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
