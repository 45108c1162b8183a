package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/motorline/boost/internal/database"
	"github.com/motorline/boost/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activation defaults
const (
	DefaultRemainingBumps = 5
	DefaultIntervalHours  = 24
)

// ErrValidation marks client-caused input errors. Handlers map it to 400.
var ErrValidation = errors.New("validation failed")

// ErrAdNotFound is returned when the referenced ad does not exist. Handlers
// map it to 404.
var ErrAdNotFound = errors.New("ad not found")

// AdStore provides read access to vehicle ads
type AdStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.VehicleAd, error)
}

// ScheduleStore provides read access to bump schedules
type ScheduleStore interface {
	GetByAdID(ctx context.Context, adID primitive.ObjectID) (*model.BumpSchedule, error)
}

// BumpStore persists the ad/schedule write pair a bump produces
type BumpStore interface {
	ApplyActivation(ctx context.Context, ad *model.VehicleAd, schedule *model.BumpSchedule) error
	ApplyAdvance(ctx context.Context, ad *model.VehicleAd, schedule *model.BumpSchedule) error
	DeactivateSchedule(ctx context.Context, adID primitive.ObjectID, now time.Time) error
}

// EventStore records applied bumps for history endpoints
type EventStore interface {
	Create(ctx context.Context, event *model.BumpEvent) error
}

// Notifier announces applied bumps to external consumers. Implementations
// must not block; delivery happens off the request/tick path.
type Notifier interface {
	NotifyBump(event model.BumpEvent, ad model.VehicleAd)
}

// BumpService owns the bump promotion lifecycle: activating schedules and
// advancing due ones.
type BumpService struct {
	ads       AdStore
	schedules ScheduleStore
	store     BumpStore
	events    EventStore
	notifier  Notifier
	nowFn     func() time.Time
}

// NewBumpService creates a new bump service. notifier may be nil when webhook
// notifications are not configured.
func NewBumpService(ads AdStore, schedules ScheduleStore, store BumpStore, events EventStore, notifier Notifier) *BumpService {
	return &BumpService{
		ads:       ads,
		schedules: schedules,
		store:     store,
		events:    events,
		notifier:  notifier,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// ActivationRequest represents the bump activation request body
type ActivationRequest struct {
	RemainingBumps *int   `json:"remainingBumps,omitempty"`
	IntervalHours  *int   `json:"intervalHours,omitempty"`
	StartAt        string `json:"startAt,omitempty"`
}

// ActivationResult represents the outcome of a bump activation
type ActivationResult struct {
	AdID      string              `json:"adId"`
	Promotion int                 `json:"promotion"`
	Schedule  *model.BumpSchedule `json:"schedule"`
	Immediate bool                `json:"-"`
}

// Activate creates or replaces the bump schedule for an ad. When no start
// time is given, or it is at or before now, the first bump fires as part of
// the request; a future start time defers it but flips the ad's promotion
// indicator immediately as a pre-activation cue.
func (s *BumpService) Activate(ctx context.Context, adID string, req ActivationRequest, correlationID string) (*ActivationResult, error) {
	remaining := DefaultRemainingBumps
	if req.RemainingBumps != nil {
		remaining = *req.RemainingBumps
	}
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: remainingBumps must be a positive integer", ErrValidation)
	}

	interval := DefaultIntervalHours
	if req.IntervalHours != nil {
		interval = *req.IntervalHours
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: intervalHours must be a positive integer", ErrValidation)
	}

	var startAt *time.Time
	if req.StartAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartAt)
		if err != nil {
			return nil, fmt.Errorf("%w: startAt must be a valid RFC3339 timestamp", ErrValidation)
		}
		utc := parsed.UTC()
		startAt = &utc
	}

	objID, err := primitive.ObjectIDFromHex(adID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ad ID format", ErrValidation)
	}

	ad, err := s.ads.GetByID(ctx, objID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}

	now := s.nowFn()
	schedule := &model.BumpSchedule{
		AdID:           objID,
		RemainingBumps: remaining,
		IntervalHours:  interval,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	immediate := startAt == nil || !startAt.After(now)
	if immediate {
		advanceSchedule(ad, schedule, now)
	} else {
		schedule.NextBumpTime = startAt
		// Pre-activation visual cue: the ad shows as boosted from the moment
		// the seller pays, even though the first bump is still pending.
		ad.Promotion = model.PromotionBoosted
		ad.UpdatedAt = now
	}

	if err := s.store.ApplyActivation(ctx, ad, schedule); err != nil {
		return nil, err
	}

	if immediate {
		s.recordBump(ctx, ad, schedule, now, model.BumpSourceActivation, correlationID)
	}

	slog.Info("Bump schedule activated",
		"ad_id", adID,
		"remaining_bumps", schedule.RemainingBumps,
		"interval_hours", interval,
		"immediate", immediate,
		"correlation_id", correlationID,
	)

	return &ActivationResult{
		AdID:      adID,
		Promotion: ad.Promotion,
		Schedule:  schedule,
		Immediate: immediate,
	}, nil
}

// ProcessSchedule advances one due schedule at the given instant. A schedule
// whose ad has been deleted is deactivated instead of advanced.
func (s *BumpService) ProcessSchedule(ctx context.Context, schedule model.BumpSchedule, now time.Time) error {
	ad, err := s.ads.GetByID(ctx, schedule.AdID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			slog.Warn("Deactivating orphaned schedule, ad no longer exists",
				"schedule_id", schedule.ID.Hex(),
				"ad_id", schedule.AdID.Hex(),
			)
			return s.store.DeactivateSchedule(ctx, schedule.AdID, now)
		}
		return err
	}

	advanceSchedule(ad, &schedule, now)

	if err := s.store.ApplyAdvance(ctx, ad, &schedule); err != nil {
		return err
	}

	s.recordBump(ctx, ad, &schedule, now, model.BumpSourceScheduler, uuid.New().String())

	slog.Info("Bump applied",
		"ad_id", schedule.AdID.Hex(),
		"remaining_bumps", schedule.RemainingBumps,
		"is_active", schedule.IsActive,
	)

	return nil
}

// GetSchedule returns the bump schedule for an ad
func (s *BumpService) GetSchedule(ctx context.Context, adID string) (*model.BumpSchedule, error) {
	objID, err := primitive.ObjectIDFromHex(adID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ad ID format", ErrValidation)
	}

	return s.schedules.GetByAdID(ctx, objID)
}

// Cancel deactivates an ad's bump schedule and clears its promotion
// indicator. The ad's freshness timestamp keeps whatever value the last
// applied bump gave it.
func (s *BumpService) Cancel(ctx context.Context, adID string) (*model.BumpSchedule, error) {
	objID, err := primitive.ObjectIDFromHex(adID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ad ID format", ErrValidation)
	}

	schedule, err := s.schedules.GetByAdID(ctx, objID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	schedule.Deactivate(now)

	ad, err := s.ads.GetByID(ctx, objID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Ad already gone; just retire the schedule.
			if err := s.store.DeactivateSchedule(ctx, objID, now); err != nil {
				return nil, err
			}
			return schedule, nil
		}
		return nil, err
	}

	ad.Promotion = model.PromotionNone
	ad.UpdatedAt = now

	if err := s.store.ApplyAdvance(ctx, ad, schedule); err != nil {
		return nil, err
	}

	slog.Info("Bump schedule cancelled", "ad_id", adID)

	return schedule, nil
}

// recordBump appends a history event and announces the bump. Both are
// best-effort: the bump itself has already been persisted.
func (s *BumpService) recordBump(ctx context.Context, ad *model.VehicleAd, schedule *model.BumpSchedule, now time.Time, source, correlationID string) {
	event := model.BumpEvent{
		AdID:           schedule.AdID,
		ScheduleID:     schedule.ID,
		CorrelationID:  correlationID,
		Source:         source,
		BumpedAt:       now,
		RemainingAfter: schedule.RemainingBumps,
		Final:          !schedule.IsActive,
	}

	if err := s.events.Create(ctx, &event); err != nil {
		slog.Warn("Failed to record bump event",
			"ad_id", schedule.AdID.Hex(),
			"correlation_id", correlationID,
			"error", err,
		)
	}

	if s.notifier != nil {
		s.notifier.NotifyBump(event, *ad)
	}
}

// advanceSchedule applies one bump to an ad and its schedule at the given
// instant. Shared by the immediate-activation branch and the scheduler tick.
//
// The ad's freshness timestamp is reset to now (the bump itself), the
// remaining count decrements floored at zero, and the schedule either gets
// its next due time or deactivates. The promotion indicator tracks whether
// bumps remain.
func advanceSchedule(ad *model.VehicleAd, schedule *model.BumpSchedule, now time.Time) {
	ad.CreatedAt = now
	ad.UpdatedAt = now

	if schedule.RemainingBumps > 0 {
		schedule.RemainingBumps--
	}

	bumpedAt := now
	schedule.LastBumpTime = &bumpedAt
	schedule.UpdatedAt = now

	if schedule.RemainingBumps > 0 {
		next := now.Add(schedule.Interval())
		schedule.NextBumpTime = &next
		schedule.IsActive = true
		ad.Promotion = model.PromotionBoosted
	} else {
		schedule.NextBumpTime = nil
		schedule.IsActive = false
		ad.Promotion = model.PromotionNone
	}
}
