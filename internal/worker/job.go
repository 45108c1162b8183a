package worker

import (
	"github.com/motorline/boost/internal/model"
)

// Job represents a bump notification delivery job
type Job struct {
	Event model.BumpEvent
	Ad    model.VehicleAd
}
