package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes creates all necessary indexes for the collections
func CreateIndexes(ctx context.Context, db *MongoDB) error {
	slog.Info("Creating MongoDB indexes")

	if err := createVehicleAdIndexes(ctx, db); err != nil {
		return err
	}

	if err := createBumpScheduleIndexes(ctx, db); err != nil {
		return err
	}

	if err := createBumpEventIndexes(ctx, db); err != nil {
		return err
	}

	if err := createScheduleLockIndexes(ctx, db); err != nil {
		return err
	}

	slog.Info("Successfully created all MongoDB indexes")
	return nil
}

func createVehicleAdIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionVehicleAds)

	// Listings sort boosted ads first, freshest first within a level.
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "promotion", Value: -1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_promotion_created_at"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{{Key: "make", Value: 1}},
			Options: options.Index().SetName("idx_make"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created vehicle_ads indexes")
	return nil
}

func createBumpScheduleIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionBumpSchedules)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ad_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_ad_id_unique"),
		},
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "next_bump_time", Value: 1},
			},
			Options: options.Index().SetName("idx_is_active_next_bump_time"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created bump_schedules indexes")
	return nil
}

func createBumpEventIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionBumpEvents)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "ad_id", Value: 1},
				{Key: "bumped_at", Value: -1},
			},
			Options: options.Index().SetName("idx_ad_id_bumped_at"),
		},
		{
			Keys:    bson.D{{Key: "bumped_at", Value: -1}},
			Options: options.Index().SetName("idx_bumped_at"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created bump_events indexes")
	return nil
}

func createScheduleLockIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionScheduleLocks)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "schedule_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_schedule_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_expires_at_ttl"),
		},
		{
			Keys:    bson.D{{Key: "locked_by", Value: 1}},
			Options: options.Index().SetName("idx_locked_by"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created schedule_locks indexes")
	return nil
}
