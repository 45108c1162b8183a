package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/motorline/boost/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ScheduleRepository handles bump schedule operations
type ScheduleRepository struct {
	collection *mongo.Collection
}

// NewScheduleRepository creates a new bump schedule repository
func NewScheduleRepository(db *MongoDB) *ScheduleRepository {
	return &ScheduleRepository{
		collection: db.GetCollection(CollectionBumpSchedules),
	}
}

// GetByAdID retrieves the bump schedule for a vehicle ad
func (r *ScheduleRepository) GetByAdID(ctx context.Context, adID primitive.ObjectID) (*model.BumpSchedule, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var schedule model.BumpSchedule
	err := r.collection.FindOne(ctxTimeout, bson.M{"ad_id": adID}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("schedule for ad %s: %w", adID.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	return &schedule, nil
}

// FindDue retrieves active schedules whose next bump is at or before now
func (r *ScheduleRepository) FindDue(ctx context.Context, now time.Time) ([]model.BumpSchedule, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"is_active": true,
		"next_bump_time": bson.M{
			"$lte": now,
		},
	}

	cursor, err := r.collection.Find(ctxTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find due schedules: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var schedules []model.BumpSchedule
	if err := cursor.All(ctxTimeout, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode due schedules: %w", err)
	}

	return schedules, nil
}
