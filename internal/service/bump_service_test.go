package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/motorline/boost/internal/database"
	"github.com/motorline/boost/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAdStore struct {
	ads map[primitive.ObjectID]*model.VehicleAd
}

func (f *fakeAdStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.VehicleAd, error) {
	ad, ok := f.ads[id]
	if !ok {
		return nil, fmt.Errorf("ad %s: %w", id.Hex(), database.ErrNotFound)
	}
	clone := *ad
	return &clone, nil
}

type fakeScheduleStore struct {
	schedules map[primitive.ObjectID]*model.BumpSchedule
}

func (f *fakeScheduleStore) GetByAdID(ctx context.Context, adID primitive.ObjectID) (*model.BumpSchedule, error) {
	schedule, ok := f.schedules[adID]
	if !ok {
		return nil, fmt.Errorf("schedule for ad %s: %w", adID.Hex(), database.ErrNotFound)
	}
	clone := *schedule
	return &clone, nil
}

type fakeBumpStore struct {
	appliedAd       *model.VehicleAd
	appliedSchedule *model.BumpSchedule
	deactivated     []primitive.ObjectID
	applyErr        error
}

func (f *fakeBumpStore) ApplyActivation(ctx context.Context, ad *model.VehicleAd, schedule *model.BumpSchedule) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	if schedule.ID.IsZero() {
		schedule.ID = primitive.NewObjectID()
	}
	f.appliedAd = ad
	f.appliedSchedule = schedule
	return nil
}

func (f *fakeBumpStore) ApplyAdvance(ctx context.Context, ad *model.VehicleAd, schedule *model.BumpSchedule) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.appliedAd = ad
	f.appliedSchedule = schedule
	return nil
}

func (f *fakeBumpStore) DeactivateSchedule(ctx context.Context, adID primitive.ObjectID, now time.Time) error {
	f.deactivated = append(f.deactivated, adID)
	return nil
}

type fakeEventStore struct {
	events []model.BumpEvent
}

func (f *fakeEventStore) Create(ctx context.Context, event *model.BumpEvent) error {
	f.events = append(f.events, *event)
	return nil
}

type fakeNotifier struct {
	notified []model.BumpEvent
}

func (f *fakeNotifier) NotifyBump(event model.BumpEvent, ad model.VehicleAd) {
	f.notified = append(f.notified, event)
}

func newTestService(now time.Time) (*BumpService, *fakeAdStore, *fakeScheduleStore, *fakeBumpStore, *fakeEventStore, *fakeNotifier) {
	ads := &fakeAdStore{ads: make(map[primitive.ObjectID]*model.VehicleAd)}
	schedules := &fakeScheduleStore{schedules: make(map[primitive.ObjectID]*model.BumpSchedule)}
	store := &fakeBumpStore{}
	events := &fakeEventStore{}
	notifier := &fakeNotifier{}

	svc := NewBumpService(ads, schedules, store, events, notifier)
	svc.nowFn = func() time.Time { return now }

	return svc, ads, schedules, store, events, notifier
}

func newTestAd() *model.VehicleAd {
	return &model.VehicleAd{
		ID:        primitive.NewObjectID(),
		Title:     "2018 Honda Civic EX",
		Make:      "Honda",
		Model:     "Civic",
		Year:      2018,
		Price:     14500,
		Promotion: model.PromotionNone,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func intPtr(v int) *int { return &v }

func TestActivateImmediateDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc, ads, _, store, events, notifier := newTestService(now)

	ad := newTestAd()
	ads.ads[ad.ID] = ad

	result, err := svc.Activate(context.Background(), ad.ID.Hex(), ActivationRequest{}, "corr-1")
	require.NoError(t, err)

	assert.True(t, result.Immediate)
	assert.Equal(t, model.PromotionBoosted, result.Promotion)

	schedule := result.Schedule
	assert.Equal(t, DefaultRemainingBumps-1, schedule.RemainingBumps)
	assert.Equal(t, DefaultIntervalHours, schedule.IntervalHours)
	assert.True(t, schedule.IsActive)
	require.NotNil(t, schedule.LastBumpTime)
	assert.Equal(t, now, *schedule.LastBumpTime)
	require.NotNil(t, schedule.NextBumpTime)
	assert.Equal(t, now.Add(24*time.Hour), *schedule.NextBumpTime)

	// The first bump fired as part of the request
	require.NotNil(t, store.appliedAd)
	assert.Equal(t, now, store.appliedAd.CreatedAt)
	assert.Equal(t, model.PromotionBoosted, store.appliedAd.Promotion)

	require.Len(t, events.events, 1)
	assert.Equal(t, model.BumpSourceActivation, events.events[0].Source)
	assert.Equal(t, "corr-1", events.events[0].CorrelationID)
	assert.False(t, events.events[0].Final)
	assert.Len(t, notifier.notified, 1)
}

func TestActivateImmediateThreeBumps(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc, ads, _, store, _, _ := newTestService(now)

	ad := newTestAd()
	ads.ads[ad.ID] = ad

	result, err := svc.Activate(context.Background(), ad.ID.Hex(), ActivationRequest{
		RemainingBumps: intPtr(3),
		IntervalHours:  intPtr(24),
	}, "corr-2")
	require.NoError(t, err)

	schedule := result.Schedule
	assert.Equal(t, 2, schedule.RemainingBumps)
	assert.True(t, schedule.IsActive)
	assert.Equal(t, now, *schedule.LastBumpTime)
	assert.Equal(t, now.Add(24*time.Hour), *schedule.NextBumpTime)
	assert.Equal(t, now, store.appliedAd.CreatedAt)
}

func TestActivateSingleBumpExhaustsImmediately(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc, ads, _, store, events, _ := newTestService(now)

	ad := newTestAd()
	ad.Promotion = model.PromotionBoosted
	ads.ads[ad.ID] = ad

	result, err := svc.Activate(context.Background(), ad.ID.Hex(), ActivationRequest{
		RemainingBumps: intPtr(1),
	}, "corr-3")
	require.NoError(t, err)

	schedule := result.Schedule
	assert.Equal(t, 0, schedule.RemainingBumps)
	assert.False(t, schedule.IsActive)
	assert.Nil(t, schedule.NextBumpTime)

	// Promotion indicator cleared: no bumps remain
	assert.Equal(t, model.PromotionNone, store.appliedAd.Promotion)
	assert.Equal(t, model.PromotionNone, result.Promotion)

	require.Len(t, events.events, 1)
	assert.True(t, events.events[0].Final)
}

func TestActivateDeferred(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	startAt := now.Add(6 * time.Hour)
	svc, ads, _, store, events, _ := newTestService(now)

	ad := newTestAd()
	originalCreatedAt := ad.CreatedAt
	ads.ads[ad.ID] = ad

	result, err := svc.Activate(context.Background(), ad.ID.Hex(), ActivationRequest{
		RemainingBumps: intPtr(4),
		StartAt:        startAt.Format(time.RFC3339),
	}, "corr-4")
	require.NoError(t, err)

	assert.False(t, result.Immediate)

	schedule := result.Schedule
	assert.Equal(t, 4, schedule.RemainingBumps)
	assert.True(t, schedule.IsActive)
	assert.Nil(t, schedule.LastBumpTime)
	require.NotNil(t, schedule.NextBumpTime)
	assert.Equal(t, startAt, *schedule.NextBumpTime)

	// Freshness untouched, promotion flipped as a pre-activation cue
	assert.Equal(t, originalCreatedAt, store.appliedAd.CreatedAt)
	assert.Equal(t, model.PromotionBoosted, store.appliedAd.Promotion)

	// No bump applied yet
	assert.Empty(t, events.events)
}

func TestActivateStartAtInPastIsImmediate(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc, ads, _, _, _, _ := newTestService(now)

	ad := newTestAd()
	ads.ads[ad.ID] = ad

	result, err := svc.Activate(context.Background(), ad.ID.Hex(), ActivationRequest{
		StartAt: now.Add(-time.Hour).Format(time.RFC3339),
	}, "corr-5")
	require.NoError(t, err)

	assert.True(t, result.Immediate)
	assert.Equal(t, DefaultRemainingBumps-1, result.Schedule.RemainingBumps)
}

func TestActivateValidation(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc, ads, _, _, _, _ := newTestService(now)

	ad := newTestAd()
	ads.ads[ad.ID] = ad

	tests := []struct {
		name string
		req  ActivationRequest
	}{
		{"zero remainingBumps", ActivationRequest{RemainingBumps: intPtr(0)}},
		{"negative remainingBumps", ActivationRequest{RemainingBumps: intPtr(-2)}},
		{"zero intervalHours", ActivationRequest{IntervalHours: intPtr(0)}},
		{"negative intervalHours", ActivationRequest{IntervalHours: intPtr(-1)}},
		{"unparseable startAt", ActivationRequest{StartAt: "next tuesday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Activate(context.Background(), ad.ID.Hex(), tt.req, "corr")
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := svc.Activate(context.Background(), "not-an-object-id", ActivationRequest{}, "corr")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestActivateAdNotFound(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc, _, _, _, _, _ := newTestService(now)

	_, err := svc.Activate(context.Background(), primitive.NewObjectID().Hex(), ActivationRequest{}, "corr")
	assert.ErrorIs(t, err, ErrAdNotFound)
}

func TestProcessScheduleLastBump(t *testing.T) {
	now := time.Date(2024, 6, 2, 11, 0, 0, 0, time.UTC)
	svc, ads, _, store, events, _ := newTestService(now)

	ad := newTestAd()
	ad.Promotion = model.PromotionBoosted
	ads.ads[ad.ID] = ad

	overdue := now.Add(-time.Hour)
	schedule := model.BumpSchedule{
		ID:             primitive.NewObjectID(),
		AdID:           ad.ID,
		RemainingBumps: 1,
		IntervalHours:  24,
		NextBumpTime:   &overdue,
		IsActive:       true,
	}

	err := svc.ProcessSchedule(context.Background(), schedule, now)
	require.NoError(t, err)

	applied := store.appliedSchedule
	assert.Equal(t, 0, applied.RemainingBumps)
	assert.False(t, applied.IsActive)
	assert.Nil(t, applied.NextBumpTime)
	assert.Equal(t, now, *applied.LastBumpTime)

	assert.Equal(t, now, store.appliedAd.CreatedAt)
	assert.Equal(t, model.PromotionNone, store.appliedAd.Promotion)

	require.Len(t, events.events, 1)
	assert.Equal(t, model.BumpSourceScheduler, events.events[0].Source)
	assert.True(t, events.events[0].Final)
}

func TestProcessScheduleBumpsRemain(t *testing.T) {
	now := time.Date(2024, 6, 2, 11, 0, 0, 0, time.UTC)
	svc, ads, _, store, _, _ := newTestService(now)

	ad := newTestAd()
	ad.Promotion = model.PromotionBoosted
	ads.ads[ad.ID] = ad

	overdue := now.Add(-10 * time.Minute)
	schedule := model.BumpSchedule{
		ID:             primitive.NewObjectID(),
		AdID:           ad.ID,
		RemainingBumps: 3,
		IntervalHours:  6,
		NextBumpTime:   &overdue,
		IsActive:       true,
	}

	err := svc.ProcessSchedule(context.Background(), schedule, now)
	require.NoError(t, err)

	applied := store.appliedSchedule
	assert.Equal(t, 2, applied.RemainingBumps)
	assert.True(t, applied.IsActive)

	// Next due time is computed from this bump, using the schedule's own interval
	require.NotNil(t, applied.NextBumpTime)
	assert.Equal(t, applied.LastBumpTime.Add(6*time.Hour), *applied.NextBumpTime)

	assert.Equal(t, model.PromotionBoosted, store.appliedAd.Promotion)
}

func TestProcessScheduleOrphanDeactivated(t *testing.T) {
	now := time.Date(2024, 6, 2, 11, 0, 0, 0, time.UTC)
	svc, _, _, store, events, _ := newTestService(now)

	overdue := now.Add(-time.Hour)
	schedule := model.BumpSchedule{
		ID:             primitive.NewObjectID(),
		AdID:           primitive.NewObjectID(),
		RemainingBumps: 2,
		IntervalHours:  24,
		NextBumpTime:   &overdue,
		IsActive:       true,
	}

	err := svc.ProcessSchedule(context.Background(), schedule, now)
	require.NoError(t, err)

	assert.Equal(t, []primitive.ObjectID{schedule.AdID}, store.deactivated)
	assert.Nil(t, store.appliedSchedule)
	assert.Empty(t, events.events)
}

func TestCancel(t *testing.T) {
	now := time.Date(2024, 6, 2, 11, 0, 0, 0, time.UTC)
	svc, ads, schedules, store, _, _ := newTestService(now)

	ad := newTestAd()
	ad.Promotion = model.PromotionBoosted
	ads.ads[ad.ID] = ad

	next := now.Add(3 * time.Hour)
	schedules.schedules[ad.ID] = &model.BumpSchedule{
		ID:             primitive.NewObjectID(),
		AdID:           ad.ID,
		RemainingBumps: 4,
		IntervalHours:  24,
		NextBumpTime:   &next,
		IsActive:       true,
	}

	schedule, err := svc.Cancel(context.Background(), ad.ID.Hex())
	require.NoError(t, err)

	assert.False(t, schedule.IsActive)
	assert.Equal(t, 0, schedule.RemainingBumps)
	assert.Nil(t, schedule.NextBumpTime)
	assert.Equal(t, model.PromotionNone, store.appliedAd.Promotion)
}

func TestAdvanceScheduleNeverGoesNegative(t *testing.T) {
	now := time.Date(2024, 6, 2, 11, 0, 0, 0, time.UTC)

	ad := newTestAd()
	schedule := &model.BumpSchedule{
		AdID:           ad.ID,
		RemainingBumps: 1,
		IntervalHours:  24,
		IsActive:       true,
	}

	for i := 0; i < 5; i++ {
		advanceSchedule(ad, schedule, now.Add(time.Duration(i)*time.Hour))
		assert.GreaterOrEqual(t, schedule.RemainingBumps, 0)
	}

	assert.Equal(t, 0, schedule.RemainingBumps)
	assert.False(t, schedule.IsActive)
	assert.Nil(t, schedule.NextBumpTime)
}
