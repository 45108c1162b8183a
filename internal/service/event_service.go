package service

import (
	"context"
	"fmt"

	"github.com/motorline/boost/internal/database"
	"github.com/motorline/boost/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventService handles bump event history queries
type EventService struct {
	repo *database.EventRepository
}

// NewEventService creates a new event service
func NewEventService(repo *database.EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

// List retrieves bump events, optionally filtered by ad
func (s *EventService) List(ctx context.Context, adID string, page, limit int) ([]model.BumpEventSummary, int64, error) {
	filter := bson.M{}
	if adID != "" {
		objID, err := primitive.ObjectIDFromHex(adID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid ad ID format", ErrValidation)
		}
		filter["ad_id"] = objID
	}

	events, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]model.BumpEventSummary, len(events))
	for i, event := range events {
		items[i] = event.ToSummary()
	}

	return items, total, nil
}
