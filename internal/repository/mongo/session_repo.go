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

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session assignment. The lifecycle starts at "sent".
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.AssignedTo == primitive.NilObjectID || session.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires assigned_to and created_by")
	}
	if session.Title == "" {
		return primitive.NilObjectID, errors.New("session requires a title")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = domain.SessionSent
		session.SentAt = now
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}

	return insertedID, nil
}

// GetByID retrieves a session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByAssignee retrieves all sessions assigned to a client, newest first.
func (r *mongoSessionRepository) GetByAssignee(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error) {
	return r.find(ctx, bson.M{"assigned_to": clientID})
}

// GetByCreator retrieves all sessions created by an admin, newest first.
func (r *mongoSessionRepository) GetByCreator(ctx context.Context, adminID primitive.ObjectID) ([]domain.Session, error) {
	return r.find(ctx, bson.M{"created_by": adminID})
}

func (r *mongoSessionRepository) find(ctx context.Context, filter bson.M) ([]domain.Session, error) {
	var sessions []domain.Session
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Update persists the updatable session fields, including the lifecycle
// status and its transition timestamps.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	if session.ID == primitive.NilObjectID {
		return errors.New("session ID is required for update")
	}

	filter := bson.M{"_id": session.ID}

	updateFields := bson.M{
		"title":        session.Title,
		"description":  session.Description,
		"content":      session.Content,
		"is_active":    session.IsActive,
		"status":       session.Status,
		"scheduled_at": session.ScheduledAt,
		"updatedAt":    time.Now().UTC(),
	}
	if session.VideoKey != "" {
		updateFields["videoKey"] = session.VideoKey
	}
	if session.PDFKey != "" {
		updateFields["pdfKey"] = session.PDFKey
	}
	// Transition timestamps are written once set; they never revert.
	if session.ViewedAt != nil {
		updateFields["viewedAt"] = *session.ViewedAt
	}
	if session.StartedAt != nil {
		updateFields["startedAt"] = *session.StartedAt
	}
	if session.CompletedAt != nil {
		updateFields["completedAt"] = *session.CompletedAt
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": updateFields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a session assignment.
func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "assigned_to", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}},
			Options: options.Index(),
		},
		{
			// Status is filtered on coach dashboards.
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
