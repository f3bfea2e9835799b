package conflicts

import (
	"hostavail/internal/availability/domain"
	availerrors "hostavail/internal/availability/errors"
	"hostavail/internal/availability/seats"
	"hostavail/internal/availability/window"
)

type Input struct {
	User      domain.CandidateUser
	Requested window.TimeWindow
	// Buffered is Requested padded by the event type's buffers. Busy intervals
	// are compared against it; working hours are compared against Requested.
	Buffered     window.TimeWindow
	Availability *domain.UserAvailability
	EventType    *domain.EventTypeConfig
}

// CheckForConflicts evaluates one user against one requested slot. Rules run in
// order and the first violation wins: seat capacity, busy intervals, working
// hours. On a seat match the matched booking is returned.
func CheckForConflicts(in Input) (*domain.SeatBooking, error) {
	if in.EventType.IsSeated() {
		slot := seats.Evaluate(in.Requested.Start(), in.Availability.CurrentSeatBookings, *in.EventType.SeatsPerTimeSlot)
		if slot.Matched {
			if slot.Admissible {
				return slot.Booking, nil
			}
			return nil, &availerrors.ConflictError{Kind: availerrors.SeatsFull, UserID: in.User.ID}
		}
	}

	buffered := in.Buffered
	if buffered.IsZero() {
		buffered = in.Requested
	}
	if busy, ok := firstBusy(buffered, in.Availability.BusyIntervals, in.Availability.OutOfOfficeExcludedIntervals); ok {
		return nil, &availerrors.ConflictError{Kind: availerrors.Busy, UserID: in.User.ID, Interval: &busy}
	}

	dateRanges := window.MergeOverrides(
		in.Availability.WorkingHourIntervals,
		in.Availability.DateOverrides,
		in.Availability.Location(),
	)
	if !withinRanges(in.Requested, dateRanges, in.EventType.IsMultiDay(in.Requested.Minutes())) {
		return nil, &availerrors.ConflictError{Kind: availerrors.OutsideWorkingHours, UserID: in.User.ID}
	}

	return nil, nil
}

// firstBusy returns the first busy interval overlapping w that is not covered
// by an out-of-office exclusion.
func firstBusy(w window.TimeWindow, busy, excluded []window.TimeWindow) (window.TimeWindow, bool) {
	for _, b := range busy {
		if !window.Overlaps(b, w) {
			continue
		}
		if window.ContainedInAny(excluded, b) {
			continue
		}
		return b, true
	}
	return window.TimeWindow{}, false
}

// withinRanges requires the whole window inside one range, or only its start
// for multi-day requests.
func withinRanges(w window.TimeWindow, ranges []window.TimeWindow, multiDay bool) bool {
	for _, r := range ranges {
		if multiDay {
			if r.Includes(w.Start()) {
				return true
			}
			continue
		}
		if window.Contains(r, w) {
			return true
		}
	}
	return false
}
