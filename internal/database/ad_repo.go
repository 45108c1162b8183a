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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdRepository handles vehicle ad operations
type AdRepository struct {
	collection *mongo.Collection
}

// NewAdRepository creates a new vehicle ad repository
func NewAdRepository(db *MongoDB) *AdRepository {
	return &AdRepository{
		collection: db.GetCollection(CollectionVehicleAds),
	}
}

// Create inserts a new vehicle ad
func (r *AdRepository) Create(ctx context.Context, ad *model.VehicleAd) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if ad.ID.IsZero() {
		ad.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, ad)
	if err != nil {
		return fmt.Errorf("failed to create ad: %w", err)
	}

	return nil
}

// GetByID retrieves a vehicle ad by ID
func (r *AdRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.VehicleAd, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ad model.VehicleAd
	err := r.collection.FindOne(ctxTimeout, bson.M{"_id": id}).Decode(&ad)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ad %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}

	return &ad, nil
}

// List retrieves vehicle ads with filtering and pagination, boosted ads
// first, freshest first within a promotion level
func (r *AdRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.VehicleAd, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ads: %w", err)
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{
			{Key: "promotion", Value: -1},
			{Key: "created_at", Value: -1},
		})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ads: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var ads []model.VehicleAd
	if err := cursor.All(ctxTimeout, &ads); err != nil {
		return nil, 0, fmt.Errorf("failed to decode ads: %w", err)
	}

	return ads, total, nil
}

// Delete deletes a vehicle ad
func (r *AdRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctxTimeout, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete ad: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("ad %s: %w", id.Hex(), ErrNotFound)
	}

	return nil
}
