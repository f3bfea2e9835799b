// Package limits enforces per-period booking count and booked-minute caps.
// Periods are calendar periods in the event type's zone; weeks start on Monday.
package limits

import (
	"time"

	"hostavail/internal/availability/domain"
	availerrors "hostavail/internal/availability/errors"
	"hostavail/internal/availability/window"
)

type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

type periodLimit struct {
	period Period
	limit  int
}

func configured(policy *domain.LimitPolicy) []periodLimit {
	if policy.IsEmpty() {
		return nil
	}
	var out []periodLimit
	for _, pl := range []periodLimit{
		{Day, policy.PerDay},
		{Week, policy.PerWeek},
		{Month, policy.PerMonth},
		{Year, policy.PerYear},
	} {
		if pl.limit > 0 {
			out = append(out, pl)
		}
	}
	return out
}

// Bounds returns the [start, end) of the period that contains t, in loc.
func Bounds(t time.Time, p Period, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch p {
	case Week:
		offset := (int(local.Weekday()) + 6) % 7
		start := midnight.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case Month:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	case Year:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	default:
		return midnight, midnight.AddDate(0, 0, 1)
	}
}

// SearchRange covers every period any policy can ask about for a request
// starting at t: the whole calendar year, widened to the surrounding weeks.
func SearchRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	yearStart, yearEnd := Bounds(t, Year, loc)
	weekStart, _ := Bounds(yearStart, Week, loc)
	_, weekEnd := Bounds(yearEnd.Add(-time.Second), Week, loc)
	return weekStart, weekEnd
}

func inPeriod(w window.TimeWindow, start, end time.Time) bool {
	return !w.Start().Before(start) && w.Start().Before(end)
}

// CheckBookingLimit rejects when the bookings already starting in a period,
// plus the requested one, exceed that period's limit.
func CheckBookingLimit(policy *domain.LimitPolicy, requested window.TimeWindow, existing []window.TimeWindow, loc *time.Location, userID string) error {
	for _, pl := range configured(policy) {
		start, end := Bounds(requested.Start(), pl.period, loc)
		count := 0
		for _, b := range existing {
			if inPeriod(b, start, end) {
				count++
			}
		}
		if count+1 > pl.limit {
			return &availerrors.LimitExceededError{
				Kind:   availerrors.BookingLimit,
				Scope:  policy.Scope,
				Period: string(pl.period),
				Limit:  pl.limit,
				Used:   count + 1,
				UserID: userID,
			}
		}
	}
	return nil
}

// CheckDurationLimit rejects when the minutes already booked in a period plus
// the requested minutes exceed that period's limit.
func CheckDurationLimit(policy *domain.LimitPolicy, requested window.TimeWindow, existing []window.TimeWindow, loc *time.Location, userID string) error {
	for _, pl := range configured(policy) {
		start, end := Bounds(requested.Start(), pl.period, loc)
		total := 0
		for _, b := range existing {
			if inPeriod(b, start, end) {
				total += b.Minutes()
			}
		}
		if total+requested.Minutes() > pl.limit {
			return &availerrors.LimitExceededError{
				Kind:   availerrors.DurationLimit,
				Scope:  policy.Scope,
				Period: string(pl.period),
				Limit:  pl.limit,
				Used:   total + requested.Minutes(),
				UserID: userID,
			}
		}
	}
	return nil
}
