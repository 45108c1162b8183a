package database

import (
	"context"
	"fmt"
	"time"

	"github.com/motorline/boost/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository handles bump event history operations
type EventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository creates a new bump event repository
func NewEventRepository(db *MongoDB) *EventRepository {
	return &EventRepository{
		collection: db.GetCollection(CollectionBumpEvents),
	}
}

// Create inserts a new bump event record
func (r *EventRepository) Create(ctx context.Context, event *model.BumpEvent) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, event)
	if err != nil {
		return fmt.Errorf("failed to create bump event: %w", err)
	}

	return nil
}

// List retrieves bump events with filtering and pagination, newest first
func (r *EventRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.BumpEvent, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bump events: %w", err)
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "bumped_at", Value: -1}})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bump events: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var events []model.BumpEvent
	if err := cursor.All(ctxTimeout, &events); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bump events: %w", err)
	}

	return events, total, nil
}
