package model

import "time"

// Table represents a bookable table (room) as stored in the `tables`
// table. Capacity describes how many people fit at the table, while
// TotalSlots/AvailableSlots track how many bookings the table can hold
// and how many are still open. TotalSlots is fixed at creation.
//
// Invariant: 0 <= AvailableSlots <= TotalSlots after every write. The
// repository enforces this both on direct updates and on counter
// adjustments made by the booking lifecycle.
type Table struct {
	ID             uint64    `json:"id"`             // tables.id
	Name           string    `json:"name"`           // tables.name
	Capacity       uint32    `json:"capacity"`       // tables.capacity (people per table)
	Features       []string  `json:"features"`       // tables.features (JSON-encoded list)
	Location       string    `json:"location"`       // tables.location
	AvailableSlots uint32    `json:"availableSlots"` // tables.available_slots
	TotalSlots     uint32    `json:"totalSlots"`     // tables.total_slots (fixed at creation)
	CreatedAt      time.Time `json:"createdAt"`      // tables.created_at
	UpdatedAt      time.Time `json:"updatedAt"`      // tables.updated_at
}
