package webhook

import (
	"log/slog"

	"github.com/motorline/boost/internal/model"
	"github.com/motorline/boost/internal/worker"
)

// Notifier enqueues bump notifications onto the worker pool. It never blocks:
// queue overflow drops the notification with a warning.
type Notifier struct {
	pool *worker.Pool
}

// NewNotifier creates a new notifier backed by the given pool
func NewNotifier(pool *worker.Pool) *Notifier {
	return &Notifier{
		pool: pool,
	}
}

// NotifyBump enqueues a bump notification for async delivery
func (n *Notifier) NotifyBump(event model.BumpEvent, ad model.VehicleAd) {
	if !n.pool.TrySubmit(worker.Job{Event: event, Ad: ad}) {
		slog.Warn("Notification queue full, dropping bump notification",
			"ad_id", event.AdID.Hex(),
			"correlation_id", event.CorrelationID,
		)
	}
}
