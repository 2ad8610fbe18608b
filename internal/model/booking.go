package model

import "time"

// Booking statuses. A booking is "active" while pending or confirmed
// and consumes exactly one slot on its table for as long as it stays
// active.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// ActiveStatus reports whether a booking in status s counts against
// its table's availability.
func ActiveStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed
}

// SlotDelta returns the adjustment to apply to a table's
// available_slots counter when a booking moves from oldStatus to
// newStatus. Every mutating operation goes through this single
// function so the counter rule cannot drift between endpoints:
//
//	active    -> cancelled  +1 (slot released)
//	cancelled -> active     -1 (slot consumed again)
//	anything else            0
//
// Creation is modelled as a transition from cancelled into the initial
// status, and deletion as a transition from the current status into
// cancelled.
func SlotDelta(oldStatus, newStatus string) int {
	switch {
	case ActiveStatus(oldStatus) && newStatus == StatusCancelled:
		return 1
	case oldStatus == StatusCancelled && ActiveStatus(newStatus):
		return -1
	default:
		return 0
	}
}

// Booking mirrors the `bookings` table. TableName, Location and
// ClubName are snapshots taken when the booking is created; they are
// not re-synced if the table or club is later renamed or deleted.
// Reference is an opaque UUID handed to clients for support requests.
type Booking struct {
	ID        uint64    `json:"id"`        // bookings.id
	Reference string    `json:"reference"` // bookings.reference (UUID)
	TableID   uint64    `json:"tableId"`   // bookings.table_id
	TableName string    `json:"tableName"` // bookings.table_name (snapshot)
	Location  string    `json:"location"`  // bookings.location (snapshot)
	Date      string    `json:"date"`      // bookings.date (YYYY-MM-DD)
	Time      string    `json:"time"`      // bookings.time_slot (label, e.g. "14:00 - 16:00")
	ClubID    uint64    `json:"clubId"`    // bookings.club_id
	ClubName  string    `json:"clubName"`  // bookings.club_name (snapshot)
	Purpose   string    `json:"purpose"`   // bookings.purpose
	Status    string    `json:"status"`    // bookings.status
	Attendees uint32    `json:"attendees"` // bookings.attendees
	UserID    uint64    `json:"userId"`    // bookings.user_id (requester)
	CreatedAt time.Time `json:"createdAt"` // bookings.created_at
	UpdatedAt time.Time `json:"updatedAt"` // bookings.updated_at
}

// DateLayout is the calendar-date format used for booking dates.
// Comparisons against "today" use this layout and ignore time of day.
const DateLayout = "2006-01-02"
