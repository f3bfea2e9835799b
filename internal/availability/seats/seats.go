// Package seats accounts for attendees sharing a seat-limited slot. Seat
// bookings are keyed by the exact start instant of the slot.
package seats

import (
	"time"

	"hostavail/internal/availability/domain"
)

type Slot struct {
	// Matched is true when at least one non-vacated seat booking starts at the slot.
	Matched bool
	// Booking is the first matching seat booking, the one a new attendee joins.
	Booking    *domain.SeatBooking
	Occupied   int
	Remaining  int
	Admissible bool
}

func sameInstant(a, b time.Time) bool {
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}

func Evaluate(slotStart time.Time, bookings []domain.SeatBooking, seatsPerTimeSlot int) Slot {
	var slot Slot
	for i := range bookings {
		b := bookings[i]
		if b.AttendeeCount <= 0 || !sameInstant(b.Start, slotStart) {
			continue
		}
		if slot.Booking == nil {
			matched := b
			slot.Booking = &matched
		}
		slot.Matched = true
		slot.Occupied += b.AttendeeCount
	}

	slot.Remaining = seatsPerTimeSlot - slot.Occupied
	slot.Admissible = !slot.Matched || slot.Remaining > 0
	return slot
}

func RemainingCapacity(slotStart time.Time, bookings []domain.SeatBooking, seatsPerTimeSlot int) int {
	return Evaluate(slotStart, bookings, seatsPerTimeSlot).Remaining
}
