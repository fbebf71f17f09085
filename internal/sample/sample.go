package sample

import (
	"time"
)

// Sample is one synthetic telemetry record, shaped like the ingestion
// endpoint's expected payload.
type Sample struct {
	Timestamp int64   `json:"timestamp"`
	CPU       float64 `json:"cpu"`
	RPS       float64 `json:"rps"`
	DeviceID  string  `json:"device_id"`
}

// Clock abstracts wall-clock reads so tests can pin timestamps.
type Clock func() time.Time
