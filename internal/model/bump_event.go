package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bump event sources
const (
	BumpSourceActivation = "activation"
	BumpSourceScheduler  = "scheduler"
)

// BumpEvent records one applied bump for audit and history endpoints.
type BumpEvent struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AdID           primitive.ObjectID `json:"ad_id" bson:"ad_id"`
	ScheduleID     primitive.ObjectID `json:"schedule_id,omitempty" bson:"schedule_id,omitempty"`
	CorrelationID  string             `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Source         string             `json:"source" bson:"source"` // "activation" | "scheduler"
	BumpedAt       time.Time          `json:"bumped_at" bson:"bumped_at"`
	RemainingAfter int                `json:"remaining_after" bson:"remaining_after"`
	Final          bool               `json:"final" bson:"final"` // last bump of the schedule
}

// BumpEventSummary represents a bump event for list responses
type BumpEventSummary struct {
	ID             string `json:"id"`
	AdID           string `json:"ad_id"`
	Source         string `json:"source"`
	BumpedAt       string `json:"bumped_at"`
	RemainingAfter int    `json:"remaining_after"`
	Final          bool   `json:"final"`
}

// ToSummary converts BumpEvent to BumpEventSummary
func (e *BumpEvent) ToSummary() BumpEventSummary {
	var bumpedAt string
	if !e.BumpedAt.IsZero() {
		bumpedAt = e.BumpedAt.Format(time.RFC3339)
	}

	return BumpEventSummary{
		ID:             e.ID.Hex(),
		AdID:           e.AdID.Hex(),
		Source:         e.Source,
		BumpedAt:       bumpedAt,
		RemainingAfter: e.RemainingAfter,
		Final:          e.Final,
	}
}
