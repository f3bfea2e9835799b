package conflicts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostavail/internal/availability/domain"
	availerrors "hostavail/internal/availability/errors"
	"hostavail/internal/availability/window"
)

var (
	user = domain.CandidateUser{ID: "user-1", Assignment: domain.Fixed}
	day  = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
)

func span(fromHour, fromMin, toHour, toMin int) window.TimeWindow {
	return window.MustNew(
		day.Add(time.Duration(fromHour)*time.Hour+time.Duration(fromMin)*time.Minute),
		day.Add(time.Duration(toHour)*time.Hour+time.Duration(toMin)*time.Minute),
		"UTC",
	)
}

func workday() *domain.UserAvailability {
	return &domain.UserAvailability{
		UserID:               user.ID,
		TimeZone:             "UTC",
		WorkingHourIntervals: []window.TimeWindow{span(9, 0, 17, 0)},
	}
}

func seatsPtr(n int) *int { return &n }

func conflictKind(t *testing.T, err error) availerrors.ConflictKind {
	t.Helper()
	var conflict *availerrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, user.ID, conflict.UserID)
	return conflict.Kind
}

func TestCheckForConflicts_FreeInsideWorkingHours(t *testing.T) {
	requested := span(10, 0, 11, 0)

	matched, err := CheckForConflicts(Input{
		User:         user,
		Requested:    requested,
		Buffered:     requested,
		Availability: workday(),
		EventType:    &domain.EventTypeConfig{BaseDurationMinutes: 60},
	})

	assert.NoError(t, err)
	assert.Nil(t, matched)
}

func TestCheckForConflicts_Busy(t *testing.T) {
	avail := workday()
	avail.BusyIntervals = []window.TimeWindow{span(10, 30, 11, 30)}
	requested := span(10, 0, 11, 0)

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: &domain.EventTypeConfig{}})

	assert.Equal(t, availerrors.Busy, conflictKind(t, err))
}

func TestCheckForConflicts_AdjacentBusyIsFree(t *testing.T) {
	avail := workday()
	avail.BusyIntervals = []window.TimeWindow{span(9, 0, 10, 0), span(11, 0, 12, 0)}
	requested := span(10, 0, 11, 0)

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: &domain.EventTypeConfig{}})

	assert.NoError(t, err)
}

func TestCheckForConflicts_BufferHitsBusy(t *testing.T) {
	avail := workday()
	avail.BusyIntervals = []window.TimeWindow{span(9, 0, 10, 0)}
	requested := span(10, 0, 11, 0)

	_, err := CheckForConflicts(Input{
		User:         user,
		Requested:    requested,
		Buffered:     requested.Expand(15*time.Minute, 0),
		Availability: avail,
		EventType:    &domain.EventTypeConfig{BeforeBufferMinutes: 15},
	})

	assert.Equal(t, availerrors.Busy, conflictKind(t, err))
}

func TestCheckForConflicts_BufferDoesNotApplyToWorkingHours(t *testing.T) {
	requested := span(9, 0, 10, 0)

	_, err := CheckForConflicts(Input{
		User:         user,
		Requested:    requested,
		Buffered:     requested.Expand(30*time.Minute, 30*time.Minute),
		Availability: workday(),
		EventType:    &domain.EventTypeConfig{BeforeBufferMinutes: 30, AfterBufferMinutes: 30},
	})

	assert.NoError(t, err)
}

func TestCheckForConflicts_OutOfOfficeExclusionSkipsBusy(t *testing.T) {
	avail := workday()
	avail.BusyIntervals = []window.TimeWindow{span(10, 0, 11, 0)}
	avail.OutOfOfficeExcludedIntervals = []window.TimeWindow{span(8, 0, 12, 0)}
	requested := span(10, 0, 11, 0)

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: &domain.EventTypeConfig{}})

	assert.NoError(t, err)
}

func TestCheckForConflicts_PartialExclusionStillBusy(t *testing.T) {
	avail := workday()
	avail.BusyIntervals = []window.TimeWindow{span(10, 0, 11, 0)}
	avail.OutOfOfficeExcludedIntervals = []window.TimeWindow{span(10, 30, 12, 0)}
	requested := span(10, 0, 11, 0)

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: &domain.EventTypeConfig{}})

	assert.Equal(t, availerrors.Busy, conflictKind(t, err))
}

func TestCheckForConflicts_OutsideWorkingHours(t *testing.T) {
	requested := span(16, 30, 17, 30)

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: workday(), EventType: &domain.EventTypeConfig{}})

	assert.Equal(t, availerrors.OutsideWorkingHours, conflictKind(t, err))
}

func TestCheckForConflicts_ContiguousWorkingHoursAreJoined(t *testing.T) {
	avail := workday()
	avail.WorkingHourIntervals = []window.TimeWindow{span(12, 0, 17, 0), span(9, 0, 12, 0)}
	requested := span(11, 30, 12, 30)

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: &domain.EventTypeConfig{}})

	assert.NoError(t, err)
}

func TestCheckForConflicts_GapBetweenWorkingHours(t *testing.T) {
	avail := workday()
	avail.WorkingHourIntervals = []window.TimeWindow{span(9, 0, 12, 0), span(13, 0, 17, 0)}
	requested := span(11, 30, 13, 30)

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: &domain.EventTypeConfig{}})

	assert.Equal(t, availerrors.OutsideWorkingHours, conflictKind(t, err))
}

func TestCheckForConflicts_NoWorkingHours(t *testing.T) {
	requested := span(10, 0, 11, 0)

	_, err := CheckForConflicts(Input{
		User:         user,
		Requested:    requested,
		Buffered:     requested,
		Availability: &domain.UserAvailability{UserID: user.ID, TimeZone: "UTC"},
		EventType:    &domain.EventTypeConfig{},
	})

	assert.Equal(t, availerrors.OutsideWorkingHours, conflictKind(t, err))
}

func TestCheckForConflicts_DateOverrideReplacesWorkingHours(t *testing.T) {
	avail := workday()
	avail.DateOverrides = []window.TimeWindow{span(18, 0, 20, 0)}

	inOverride := span(18, 30, 19, 30)
	_, err := CheckForConflicts(Input{User: user, Requested: inOverride, Buffered: inOverride, Availability: avail, EventType: &domain.EventTypeConfig{}})
	assert.NoError(t, err)

	inOldHours := span(10, 0, 11, 0)
	_, err = CheckForConflicts(Input{User: user, Requested: inOldHours, Buffered: inOldHours, Availability: avail, EventType: &domain.EventTypeConfig{}})
	assert.Equal(t, availerrors.OutsideWorkingHours, conflictKind(t, err))
}

func TestCheckForConflicts_SeatWithCapacityOverridesBusy(t *testing.T) {
	requested := span(10, 0, 11, 0)
	avail := workday()
	avail.BusyIntervals = []window.TimeWindow{requested}
	avail.CurrentSeatBookings = []domain.SeatBooking{{BookingID: "booking-1", Start: requested.Start(), AttendeeCount: 1}}
	eventType := &domain.EventTypeConfig{BaseDurationMinutes: 60, SeatsPerTimeSlot: seatsPtr(2)}

	matched, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: eventType})

	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, "booking-1", matched.BookingID)
}

func TestCheckForConflicts_SeatsFull(t *testing.T) {
	requested := span(10, 0, 11, 0)
	avail := workday()
	avail.BusyIntervals = []window.TimeWindow{requested}
	avail.CurrentSeatBookings = []domain.SeatBooking{{BookingID: "booking-1", Start: requested.Start(), AttendeeCount: 2}}
	eventType := &domain.EventTypeConfig{BaseDurationMinutes: 60, SeatsPerTimeSlot: seatsPtr(2)}

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: eventType})

	assert.Equal(t, availerrors.SeatsFull, conflictKind(t, err))
}

func TestCheckForConflicts_SeatOverrideOnlyForExactStart(t *testing.T) {
	booked := span(10, 0, 11, 0)
	requested := span(10, 30, 11, 30)
	avail := workday()
	avail.BusyIntervals = []window.TimeWindow{booked}
	avail.CurrentSeatBookings = []domain.SeatBooking{{BookingID: "booking-1", Start: booked.Start(), AttendeeCount: 1}}
	eventType := &domain.EventTypeConfig{BaseDurationMinutes: 60, SeatsPerTimeSlot: seatsPtr(5)}

	_, err := CheckForConflicts(Input{User: user, Requested: requested, Buffered: requested, Availability: avail, EventType: eventType})

	assert.Equal(t, availerrors.Busy, conflictKind(t, err))
}

func TestCheckForConflicts_MultiDayNeedsOnlyStartCovered(t *testing.T) {
	avail := &domain.UserAvailability{
		UserID:               user.ID,
		TimeZone:             "UTC",
		WorkingHourIntervals: []window.TimeWindow{span(9, 0, 10, 0)},
	}
	requested := window.MustNew(day.Add(9*time.Hour+30*time.Minute), day.Add(48*time.Hour+9*time.Hour+30*time.Minute), "UTC")

	_, err := CheckForConflicts(Input{
		User:         user,
		Requested:    requested,
		Buffered:     requested,
		Availability: avail,
		EventType:    &domain.EventTypeConfig{BaseDurationMinutes: 60, MultiDayEnabled: true},
	})
	assert.NoError(t, err)

	_, err = CheckForConflicts(Input{
		User:         user,
		Requested:    requested,
		Buffered:     requested,
		Availability: avail,
		EventType:    &domain.EventTypeConfig{BaseDurationMinutes: 60},
	})
	assert.Equal(t, availerrors.OutsideWorkingHours, conflictKind(t, err))
}

func TestCheckForConflicts_MultiDayStartAtRangeEndIsOutside(t *testing.T) {
	avail := &domain.UserAvailability{
		UserID:               user.ID,
		TimeZone:             "UTC",
		WorkingHourIntervals: []window.TimeWindow{span(9, 0, 10, 0)},
	}
	requested := window.MustNew(day.Add(10*time.Hour), day.Add(34*time.Hour), "UTC")

	_, err := CheckForConflicts(Input{
		User:         user,
		Requested:    requested,
		Buffered:     requested,
		Availability: avail,
		EventType:    &domain.EventTypeConfig{BaseDurationMinutes: 60, MultiDayEnabled: true},
	})

	assert.Equal(t, availerrors.OutsideWorkingHours, conflictKind(t, err))
}
