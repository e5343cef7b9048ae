package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const saboteurCollectionName = "custom_saboteurs"

// mongoSaboteurRepository implements repository.SaboteurRepository
type mongoSaboteurRepository struct {
	collection *mongo.Collection
}

// NewMongoSaboteurRepository creates a new Saboteur repository backed by MongoDB.
func NewMongoSaboteurRepository(db *mongo.Database) repository.SaboteurRepository {
	return &mongoSaboteurRepository{
		collection: db.Collection(saboteurCollectionName),
	}
}

// Create inserts a new saboteur taxonomy entry.
func (r *mongoSaboteurRepository) Create(ctx context.Context, saboteur *domain.Saboteur) (primitive.ObjectID, error) {
	if saboteur.AdminID == primitive.NilObjectID || saboteur.Name == "" {
		return primitive.NilObjectID, errors.New("saboteur requires an admin id and a name")
	}

	saboteur.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	saboteur.CreatedAt = now
	saboteur.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, saboteur)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted saboteur ID")
	}

	return insertedID, nil
}

// GetByID retrieves a saboteur by its ID.
func (r *mongoSaboteurRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Saboteur, error) {
	var saboteur domain.Saboteur
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&saboteur)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &saboteur, nil
}

// GetAll retrieves the saboteur taxonomy, optionally only active entries.
func (r *mongoSaboteurRepository) GetAll(ctx context.Context, activeOnly bool) ([]domain.Saboteur, error) {
	var saboteurs []domain.Saboteur
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &saboteurs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return saboteurs, nil
}

// Update replaces the editable fields of a saboteur entry.
func (r *mongoSaboteurRepository) Update(ctx context.Context, saboteur *domain.Saboteur) error {
	if saboteur.ID == primitive.NilObjectID {
		return errors.New("saboteur ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":              saboteur.Name,
			"description":       saboteur.Description,
			"triggers":          saboteur.Triggers,
			"patterns":          saboteur.Patterns,
			"coping_strategies": saboteur.CopingStrategies,
			"is_active":         saboteur.IsActive,
			"updatedAt":         time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": saboteur.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetActive flips the is_active toggle.
func (r *mongoSaboteurRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	update := bson.M{
		"$set": bson.M{
			"is_active": active,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a saboteur entry.
func (r *mongoSaboteurRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSaboteurIndexes creates necessary indexes for the custom_saboteurs collection.
func EnsureSaboteurIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
