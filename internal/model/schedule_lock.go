package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleLock represents a distributed lock claiming a bump schedule for
// processing, so multiple scheduler instances never advance the same schedule
// in the same due window.
type ScheduleLock struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ScheduleID primitive.ObjectID `json:"schedule_id" bson:"schedule_id"`
	LockedBy   string             `json:"locked_by" bson:"locked_by"`   // Pod identifier (hostname)
	LockedAt   time.Time          `json:"locked_at" bson:"locked_at"`   // Lock acquisition timestamp
	ExpiresAt  time.Time          `json:"expires_at" bson:"expires_at"` // Lock expiration (TTL)
}
