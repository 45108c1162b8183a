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

// BumpStore applies the ad/schedule write pair produced by a bump. A bump and
// its bookkeeping update must land together: when transactions are enabled
// both writes run inside one MongoDB multi-document transaction, so a crash
// mid-apply cannot leave the ad bumped with the schedule unadvanced (which
// would double-bump on the next tick).
//
// Transactions require a replica set; transactional=false falls back to
// sequential writes for standalone deployments.
type BumpStore struct {
	db            *MongoDB
	ads           *mongo.Collection
	schedules     *mongo.Collection
	transactional bool
}

// NewBumpStore creates a new bump store
func NewBumpStore(db *MongoDB, transactional bool) *BumpStore {
	return &BumpStore{
		db:            db,
		ads:           db.GetCollection(CollectionVehicleAds),
		schedules:     db.GetCollection(CollectionBumpSchedules),
		transactional: transactional,
	}
}

// ApplyActivation persists an activation: writes the ad's promotion state
// (and freshness timestamp, already mutated by the caller on the immediate
// path) and upserts the schedule keyed by ad_id. The schedule's ID field is
// populated from the stored document.
func (s *BumpStore) ApplyActivation(ctx context.Context, ad *model.VehicleAd, schedule *model.BumpSchedule) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.run(ctxTimeout, func(ctx context.Context) error {
		if err := s.writeAd(ctx, ad); err != nil {
			return err
		}

		update := bson.M{
			"$set": bson.M{
				"ad_id":           schedule.AdID,
				"remaining_bumps": schedule.RemainingBumps,
				"interval_hours":  schedule.IntervalHours,
				"next_bump_time":  schedule.NextBumpTime,
				"last_bump_time":  schedule.LastBumpTime,
				"is_active":       schedule.IsActive,
				"updated_at":      schedule.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"created_at": schedule.CreatedAt,
			},
		}

		opts := options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After)

		var stored model.BumpSchedule
		if err := s.schedules.FindOneAndUpdate(ctx, bson.M{"ad_id": schedule.AdID}, update, opts).Decode(&stored); err != nil {
			return fmt.Errorf("failed to upsert schedule: %w", err)
		}

		schedule.ID = stored.ID
		schedule.CreatedAt = stored.CreatedAt
		return nil
	})
}

// ApplyAdvance persists one advanced bump: the ad's freshness/promotion write
// and the schedule's countdown write, together.
func (s *BumpStore) ApplyAdvance(ctx context.Context, ad *model.VehicleAd, schedule *model.BumpSchedule) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.run(ctxTimeout, func(ctx context.Context) error {
		if err := s.writeAd(ctx, ad); err != nil {
			return err
		}

		update := bson.M{
			"$set": bson.M{
				"remaining_bumps": schedule.RemainingBumps,
				"next_bump_time":  schedule.NextBumpTime,
				"last_bump_time":  schedule.LastBumpTime,
				"is_active":       schedule.IsActive,
				"updated_at":      schedule.UpdatedAt,
			},
		}

		result, err := s.schedules.UpdateOne(ctx, bson.M{"ad_id": schedule.AdID}, update)
		if err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("schedule for ad %s: %w", schedule.AdID.Hex(), ErrNotFound)
		}

		return nil
	})
}

// DeactivateSchedule marks an ad's schedule as exhausted. Used when a tick
// finds the referenced ad gone, and when a seller cancels bumping.
func (s *BumpStore) DeactivateSchedule(ctx context.Context, adID primitive.ObjectID, now time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"is_active":       false,
			"remaining_bumps": 0,
			"next_bump_time":  nil,
			"updated_at":      now,
		},
	}

	result, err := s.schedules.UpdateOne(ctxTimeout, bson.M{"ad_id": adID}, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate schedule: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("schedule for ad %s: %w", adID.Hex(), ErrNotFound)
	}

	return nil
}

// writeAd persists the ad fields a bump mutates
func (s *BumpStore) writeAd(ctx context.Context, ad *model.VehicleAd) error {
	update := bson.M{
		"$set": bson.M{
			"promotion":  ad.Promotion,
			"created_at": ad.CreatedAt,
			"updated_at": ad.UpdatedAt,
		},
	}

	result, err := s.ads.UpdateOne(ctx, bson.M{"_id": ad.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update ad: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ad %s: %w", ad.ID.Hex(), ErrNotFound)
	}

	return nil
}

// run executes fn inside a multi-document transaction when enabled
func (s *BumpStore) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactional {
		return fn(ctx)
	}

	session, err := s.db.Client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
