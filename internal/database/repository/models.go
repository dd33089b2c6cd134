package repository

import "time"

// Plan represents a saved city plan row.
type Plan struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Zones     int
	Items     int
}

// Adjustment records one applied impact projection.
type Adjustment struct {
	ID        string
	ZoneName  string
	Impact    string
	Proposed  float64
	Years     int
	Yearly    float64
	Total     float64
	CreatedAt time.Time
}
