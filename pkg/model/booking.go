package model

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusAccepted  = "accepted"
	BookingStatusCancelled = "cancelled"
	BookingStatusRejected  = "rejected"
)

// Booking is read-only here; bookings are written by the booking service.
type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	EventTypeID   string    `json:"event_type_id" bson:"event_type_id"`
	HostIDs       []string  `json:"host_ids" bson:"host_ids"`
	StartTime     time.Time `json:"start_time" bson:"start_time"`
	EndTime       time.Time `json:"end_time" bson:"end_time"`
	Status        string    `json:"status" bson:"status"`
	AttendeeCount int       `json:"attendee_count" bson:"attendee_count"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Blocking reports whether the booking still occupies its hosts' time.
func (b *Booking) Blocking() bool {
	return b.Status != BookingStatusCancelled && b.Status != BookingStatusRejected
}
