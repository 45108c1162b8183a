package scheduler

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motorline/boost/internal/config"
	"github.com/motorline/boost/internal/model"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DueFinder finds schedules whose next bump is due
type DueFinder interface {
	FindDue(ctx context.Context, now time.Time) ([]model.BumpSchedule, error)
}

// Locker claims individual schedules so concurrent scheduler instances never
// advance the same schedule in the same due window
type Locker interface {
	AcquireLock(ctx context.Context, scheduleID primitive.ObjectID, podID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, scheduleID primitive.ObjectID, podID string) error
	ReleaseAllLocks(ctx context.Context, podID string) error
	CleanExpiredLocks(ctx context.Context) (int64, error)
}

// Processor advances a single due schedule
type Processor interface {
	ProcessSchedule(ctx context.Context, schedule model.BumpSchedule, now time.Time) error
}

// Scheduler advances due bump schedules on a cron cadence. Start/Stop own the
// recurring job; RunTick is invocable directly so tests and operators can
// drive a single tick deterministically.
type Scheduler struct {
	cfg       *config.Config
	schedules DueFinder
	locks     Locker
	processor Processor
	podID     string
	cron      *cron.Cron
	tickMu    sync.Mutex
	nowFn     func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, schedules DueFinder, locks Locker, processor Processor) *Scheduler {
	// Pod identifier (hostname in Kubernetes)
	podID, err := os.Hostname()
	if err != nil {
		podID = uuid.New().String()
		slog.Warn("Failed to get hostname, using UUID as pod ID", "pod_id", podID)
	}

	return &Scheduler{
		cfg:       cfg,
		schedules: schedules,
		locks:     locks,
		processor: processor,
		podID:     podID,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the recurring tick and begins the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.SchedulerEnabled {
		slog.Info("Scheduler is disabled by configuration")
		return nil
	}

	slog.Info("Starting scheduler",
		"pod_id", s.podID,
		"cron", s.cfg.SchedulerCron,
		"lock_ttl", s.cfg.SchedulerLockTTL,
	)

	s.cron = cron.New(cron.WithLocation(time.UTC))
	if _, err := s.cron.AddFunc(s.cfg.SchedulerCron, func() {
		s.RunTick(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waits for an in-flight tick to finish, and
// releases any locks this pod still holds.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}

	slog.Info("Stopping scheduler", "pod_id", s.podID)

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		slog.Info("In-flight tick completed")
	case <-ctx.Done():
		slog.Warn("Timeout waiting for in-flight tick to complete")
	}

	if err := s.locks.ReleaseAllLocks(context.Background(), s.podID); err != nil {
		slog.Error("Failed to release locks during shutdown", "error", err)
	}

	slog.Info("Scheduler stopped", "pod_id", s.podID)
}

// RunTick processes every due schedule once. Due schedules are handled
// sequentially; a failure on one is logged and never blocks the rest.
func (s *Scheduler) RunTick(ctx context.Context) {
	// Ticks never overlap, even if a slow tick outlasts the cadence.
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	now := s.nowFn()

	slog.Info("Scheduler tick", "pod_id", s.podID, "time", now.Format(time.RFC3339))

	if _, err := s.locks.CleanExpiredLocks(ctx); err != nil {
		slog.Error("Failed to clean expired locks", "error", err)
	}

	due, err := s.schedules.FindDue(ctx, now)
	if err != nil {
		slog.Error("Failed to find due schedules", "error", err)
		return
	}

	if len(due) == 0 {
		slog.Debug("No schedules due", "pod_id", s.podID)
		return
	}

	slog.Info("Found due schedules",
		"pod_id", s.podID,
		"count", len(due),
	)

	for _, schedule := range due {
		s.processOne(ctx, schedule, now)
	}
}

// processOne claims and advances a single schedule
func (s *Scheduler) processOne(ctx context.Context, schedule model.BumpSchedule, now time.Time) {
	acquired, err := s.locks.AcquireLock(ctx, schedule.ID, s.podID, s.cfg.SchedulerLockTTL)
	if err != nil {
		slog.Error("Failed to acquire lock",
			"schedule_id", schedule.ID.Hex(),
			"ad_id", schedule.AdID.Hex(),
			"error", err,
		)
		return
	}

	if !acquired {
		slog.Debug("Lock already held by another pod",
			"schedule_id", schedule.ID.Hex(),
			"ad_id", schedule.AdID.Hex(),
		)
		return
	}

	defer func() {
		if err := s.locks.ReleaseLock(ctx, schedule.ID, s.podID); err != nil {
			slog.Error("Failed to release lock",
				"schedule_id", schedule.ID.Hex(),
				"pod_id", s.podID,
				"error", err,
			)
		}
	}()

	// The schedule keeps its previous next_bump_time on failure and is
	// reconsidered due on the next tick.
	if err := s.processor.ProcessSchedule(ctx, schedule, now); err != nil {
		slog.Error("Failed to process schedule",
			"schedule_id", schedule.ID.Hex(),
			"ad_id", schedule.AdID.Hex(),
			"error", err,
		)
	}
}
