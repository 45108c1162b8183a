package service

import (
	"context"
	"fmt"

	"github.com/motorline/boost/internal/database"
	"github.com/motorline/boost/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdService handles vehicle ad management
type AdService struct {
	repo *database.AdRepository
}

// NewAdService creates a new ad service
func NewAdService(repo *database.AdRepository) *AdService {
	return &AdService{
		repo: repo,
	}
}

// Create creates a new vehicle ad
func (s *AdService) Create(ctx context.Context, ad *model.VehicleAd) error {
	if err := ad.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	return s.repo.Create(ctx, ad)
}

// GetByID retrieves a vehicle ad by ID
func (s *AdService) GetByID(ctx context.Context, id string) (*model.VehicleAd, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ad ID format", ErrValidation)
	}

	return s.repo.GetByID(ctx, objID)
}

// List retrieves vehicle ads with filtering
func (s *AdService) List(ctx context.Context, vehicleMake string, promoted *bool, page, limit int) ([]model.AdListItem, int64, error) {
	filter := bson.M{}
	if vehicleMake != "" {
		filter["make"] = vehicleMake
	}
	if promoted != nil {
		if *promoted {
			filter["promotion"] = bson.M{"$gt": model.PromotionNone}
		} else {
			filter["promotion"] = model.PromotionNone
		}
	}

	ads, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]model.AdListItem, len(ads))
	for i, ad := range ads {
		items[i] = ad.ToListItem()
	}

	return items, total, nil
}

// Delete deletes a vehicle ad. Its schedule, if any, is left behind and will
// be deactivated as an orphan by the next scheduler tick that picks it up.
func (s *AdService) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid ad ID format", ErrValidation)
	}

	return s.repo.Delete(ctx, objID)
}
