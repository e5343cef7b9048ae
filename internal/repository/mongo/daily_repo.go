package mongo

import (
	"context"
	"log"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	missionCollectionName = "daily_missions"
	scoreCollectionName   = "daily_scores"
)

// mongoDailyRepository implements repository.DailyRepository. Missions and
// scores are written by the client check-in flow; this service only reads
// them to build engagement timelines.
type mongoDailyRepository struct {
	missions *mongo.Collection
	scores   *mongo.Collection
}

// NewMongoDailyRepository creates a new Daily repository backed by MongoDB.
func NewMongoDailyRepository(db *mongo.Database) repository.DailyRepository {
	return &mongoDailyRepository{
		missions: db.Collection(missionCollectionName),
		scores:   db.Collection(scoreCollectionName),
	}
}

// GetMissionsByUserID retrieves a user's missions on or after since, oldest
// first. Dates are stored as YYYY-MM-DD strings, so string comparison orders
// correctly.
func (r *mongoDailyRepository) GetMissionsByUserID(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.DailyMission, error) {
	var missions []domain.DailyMission
	filter := bson.M{
		"user_id": userID,
		"data":    bson.M{"$gte": since.Format("2006-01-02")},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "data", Value: 1}})

	cursor, err := r.missions.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &missions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return missions, nil
}

// GetScoresByUserID retrieves a user's daily scores on or after since, oldest first.
func (r *mongoDailyRepository) GetScoresByUserID(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.DailyScore, error) {
	var scores []domain.DailyScore
	filter := bson.M{
		"user_id": userID,
		"data":    bson.M{"$gte": since.Format("2006-01-02")},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "data", Value: 1}})

	cursor, err := r.scores.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &scores); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return scores, nil
}

// EnsureDailyIndexes creates necessary indexes for both daily collections.
func EnsureDailyIndexes(ctx context.Context, missions, scores *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "data", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := missions.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", missions.Name(), err)
	}
	if _, err := scores.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", scores.Name(), err)
	}
}
