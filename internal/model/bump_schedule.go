package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BumpSchedule tracks how many promotional bumps remain for a vehicle ad and
// when the next one is due. Exactly one schedule exists per ad (unique index
// on ad_id, upserted on activation).
//
// Invariants: remaining_bumps >= 0 always; is_active implies remaining_bumps
// > 0 and next_bump_time set; once remaining_bumps hits zero the schedule is
// permanently inactive with next_bump_time null.
type BumpSchedule struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AdID           primitive.ObjectID `json:"ad_id" bson:"ad_id"`
	RemainingBumps int                `json:"remaining_bumps" bson:"remaining_bumps"`
	IntervalHours  int                `json:"interval_hours" bson:"interval_hours"`
	NextBumpTime   *time.Time         `json:"next_bump_time" bson:"next_bump_time,omitempty"`
	LastBumpTime   *time.Time         `json:"last_bump_time" bson:"last_bump_time,omitempty"`
	IsActive       bool               `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// Interval returns the schedule's bump interval as a duration.
func (s *BumpSchedule) Interval() time.Duration {
	return time.Duration(s.IntervalHours) * time.Hour
}

// Deactivate marks the schedule as exhausted.
func (s *BumpSchedule) Deactivate(now time.Time) {
	s.IsActive = false
	s.RemainingBumps = 0
	s.NextBumpTime = nil
	s.UpdatedAt = now
}
