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

const weighInCollectionName = "pesagens"

// mongoWeighInRepository implements repository.WeighInRepository
type mongoWeighInRepository struct {
	collection *mongo.Collection
}

// NewMongoWeighInRepository creates a new WeighIn repository backed by MongoDB.
func NewMongoWeighInRepository(db *mongo.Database) repository.WeighInRepository {
	return &mongoWeighInRepository{
		collection: db.Collection(weighInCollectionName),
	}
}

// Create inserts a new weigh-in.
func (r *mongoWeighInRepository) Create(ctx context.Context, weighIn *domain.WeighIn) (primitive.ObjectID, error) {
	if weighIn.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("weigh-in requires a user id")
	}
	if weighIn.WeightKg <= 0 {
		return primitive.NilObjectID, errors.New("weigh-in requires a positive weight")
	}

	weighIn.ID = primitive.NewObjectID()
	weighIn.CreatedAt = time.Now().UTC()
	if weighIn.MeasuredAt.IsZero() {
		weighIn.MeasuredAt = weighIn.CreatedAt
	}

	result, err := r.collection.InsertOne(ctx, weighIn)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted weigh-in ID")
	}

	return insertedID, nil
}

// GetByUserID retrieves the user's weigh-ins newest first, bounded by limit.
// All derived metrics downstream are windowed by this limit.
func (r *mongoWeighInRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.WeighIn, error) {
	var weighIns []domain.WeighIn
	filter := bson.M{"user_id": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "data_medicao", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &weighIns); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return weighIns, nil
}

// Delete removes a weigh-in, scoped to the owning user so one client can
// never delete another's record.
func (r *mongoWeighInRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "user_id": userID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWeighInIndexes creates necessary indexes for the pesagens collection.
func EnsureWeighInIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// The dominant query: a user's window, newest first.
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "data_medicao", Value: -1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
