package location

import "time"

// Sample is one GPS reading in the durable timeline. Only the most recent
// sample per driver matters for live display; the full timeline is kept
// for audit.
type Sample struct {
	ID         int       `json:"id"`
	DriverID   string    `json:"driverId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}
