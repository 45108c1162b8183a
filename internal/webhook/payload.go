package webhook

import (
	"time"

	"github.com/motorline/boost/internal/model"
)

// BumpPayload is the JSON document posted to the configured webhook when a
// bump is applied.
type BumpPayload struct {
	Event          string  `json:"event"` // "bump.applied" | "bump.completed"
	AdID           string  `json:"ad_id"`
	AdTitle        string  `json:"ad_title"`
	Source         string  `json:"source"`
	BumpedAt       string  `json:"bumped_at"`
	RemainingBumps int     `json:"remaining_bumps"`
	Promotion      int     `json:"promotion"`
	Price          float64 `json:"price,omitempty"`
	CorrelationID  string  `json:"correlation_id,omitempty"`
}

// NewBumpPayload builds a webhook payload from a bump event and its ad
func NewBumpPayload(event model.BumpEvent, ad model.VehicleAd) BumpPayload {
	name := "bump.applied"
	if event.Final {
		name = "bump.completed"
	}

	return BumpPayload{
		Event:          name,
		AdID:           event.AdID.Hex(),
		AdTitle:        ad.Title,
		Source:         event.Source,
		BumpedAt:       event.BumpedAt.Format(time.RFC3339),
		RemainingBumps: event.RemainingAfter,
		Promotion:      ad.Promotion,
		Price:          ad.Price,
		CorrelationID:  event.CorrelationID,
	}
}
