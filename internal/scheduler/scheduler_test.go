package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/motorline/boost/internal/config"
	"github.com/motorline/boost/internal/model"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDueFinder struct {
	due []model.BumpSchedule
	err error
}

func (f *fakeDueFinder) FindDue(ctx context.Context, now time.Time) ([]model.BumpSchedule, error) {
	return f.due, f.err
}

type fakeLocker struct {
	denied   map[primitive.ObjectID]bool
	acquired []primitive.ObjectID
	released []primitive.ObjectID
}

func (f *fakeLocker) AcquireLock(ctx context.Context, scheduleID primitive.ObjectID, podID string, ttl time.Duration) (bool, error) {
	if f.denied[scheduleID] {
		return false, nil
	}
	f.acquired = append(f.acquired, scheduleID)
	return true, nil
}

func (f *fakeLocker) ReleaseLock(ctx context.Context, scheduleID primitive.ObjectID, podID string) error {
	f.released = append(f.released, scheduleID)
	return nil
}

func (f *fakeLocker) ReleaseAllLocks(ctx context.Context, podID string) error {
	return nil
}

func (f *fakeLocker) CleanExpiredLocks(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeProcessor struct {
	failOn    map[primitive.ObjectID]error
	processed []primitive.ObjectID
}

func (f *fakeProcessor) ProcessSchedule(ctx context.Context, schedule model.BumpSchedule, now time.Time) error {
	f.processed = append(f.processed, schedule.ID)
	return f.failOn[schedule.ID]
}

func testConfig() *config.Config {
	return &config.Config{
		SchedulerEnabled: true,
		SchedulerCron:    "0 * * * *",
		SchedulerLockTTL: 5 * time.Minute,
	}
}

func dueSchedule(now time.Time) model.BumpSchedule {
	overdue := now.Add(-time.Hour)
	return model.BumpSchedule{
		ID:             primitive.NewObjectID(),
		AdID:           primitive.NewObjectID(),
		RemainingBumps: 2,
		IntervalHours:  24,
		NextBumpTime:   &overdue,
		IsActive:       true,
	}
}

func TestRunTickProcessesAllDueSchedules(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	s1 := dueSchedule(now)
	s2 := dueSchedule(now)

	finder := &fakeDueFinder{due: []model.BumpSchedule{s1, s2}}
	locker := &fakeLocker{denied: map[primitive.ObjectID]bool{}}
	processor := &fakeProcessor{failOn: map[primitive.ObjectID]error{}}

	sched := NewScheduler(testConfig(), finder, locker, processor)
	sched.nowFn = func() time.Time { return now }

	sched.RunTick(context.Background())

	assert.Equal(t, []primitive.ObjectID{s1.ID, s2.ID}, processor.processed)
	assert.Equal(t, []primitive.ObjectID{s1.ID, s2.ID}, locker.released)
}

func TestRunTickFailureDoesNotBlockOthers(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	s1 := dueSchedule(now)
	s2 := dueSchedule(now)
	s3 := dueSchedule(now)

	finder := &fakeDueFinder{due: []model.BumpSchedule{s1, s2, s3}}
	locker := &fakeLocker{denied: map[primitive.ObjectID]bool{}}
	processor := &fakeProcessor{failOn: map[primitive.ObjectID]error{
		s2.ID: errors.New("datastore unavailable"),
	}}

	sched := NewScheduler(testConfig(), finder, locker, processor)
	sched.nowFn = func() time.Time { return now }

	sched.RunTick(context.Background())

	// All three attempted, lock released even for the failed one
	assert.Equal(t, []primitive.ObjectID{s1.ID, s2.ID, s3.ID}, processor.processed)
	assert.Equal(t, []primitive.ObjectID{s1.ID, s2.ID, s3.ID}, locker.released)
}

func TestRunTickSkipsLockedSchedules(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	s1 := dueSchedule(now)
	s2 := dueSchedule(now)

	finder := &fakeDueFinder{due: []model.BumpSchedule{s1, s2}}
	locker := &fakeLocker{denied: map[primitive.ObjectID]bool{s1.ID: true}}
	processor := &fakeProcessor{failOn: map[primitive.ObjectID]error{}}

	sched := NewScheduler(testConfig(), finder, locker, processor)
	sched.nowFn = func() time.Time { return now }

	sched.RunTick(context.Background())

	assert.Equal(t, []primitive.ObjectID{s2.ID}, processor.processed)
	assert.Equal(t, []primitive.ObjectID{s2.ID}, locker.released)
}

func TestRunTickFindDueError(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

	finder := &fakeDueFinder{err: errors.New("connection reset")}
	locker := &fakeLocker{denied: map[primitive.ObjectID]bool{}}
	processor := &fakeProcessor{failOn: map[primitive.ObjectID]error{}}

	sched := NewScheduler(testConfig(), finder, locker, processor)
	sched.nowFn = func() time.Time { return now }

	sched.RunTick(context.Background())

	assert.Empty(t, processor.processed)
}
