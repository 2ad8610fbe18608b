// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// Event kinds published by the booking lifecycle.
const (
	KindBookingConfirmed = "booking.confirmed"
	KindBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is confirmed or cancelled.
// It carries enough denormalized detail for downstream consumers to
// log or notify without querying the primary database.
type BookingEvent struct {
	Kind       string `json:"kind"` // KindBookingConfirmed or KindBookingCancelled
	BookingID  uint64 `json:"booking_id"`
	Reference  string `json:"reference"`
	TableID    uint64 `json:"table_id"`
	TableName  string `json:"table_name"`
	Location   string `json:"location"`
	Date       string `json:"date"`
	TimeSlot   string `json:"time_slot"`
	ClubID     uint64 `json:"club_id"`
	ClubName   string `json:"club_name"`
	UserID     uint64 `json:"user_id"`
	Attendees  uint32 `json:"attendees"`
	OccurredAt string `json:"occurred_at"`
}
