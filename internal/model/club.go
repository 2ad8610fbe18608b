package model

import "time"

// Club is a student club that books tables. Clubs have no lifecycle
// logic of their own; bookings snapshot the club name at creation.
type Club struct {
	ID        uint64    `json:"id"`        // clubs.id
	Name      string    `json:"name"`      // clubs.name
	CreatedAt time.Time `json:"createdAt"` // clubs.created_at
	UpdatedAt time.Time `json:"updatedAt"` // clubs.updated_at
}
