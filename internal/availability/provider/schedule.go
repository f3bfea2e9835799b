package provider

import (
	"fmt"
	"slices"
	"time"

	"hostavail/internal/availability/window"
	"hostavail/pkg/model"
)

func parseClock(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	return t.Hour(), t.Minute(), nil
}

// dayRange turns a start/end wall-clock pair into an interval on day. An end
// that is not after the start runs to the following midnight.
func dayRange(day time.Time, start, end string, tz string) (window.TimeWindow, error) {
	sh, sm, err := parseClock(start)
	if err != nil {
		return window.TimeWindow{}, err
	}
	eh, em, err := parseClock(end)
	if err != nil {
		return window.TimeWindow{}, err
	}

	loc := day.Location()
	y, m, d := day.Date()
	from := time.Date(y, m, d, sh, sm, 0, 0, loc)
	to := time.Date(y, m, d, eh, em, 0, 0, loc)
	if !to.After(from) {
		to = time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	}
	return window.New(from, to, tz)
}

func localMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// blockedDates collects overrides that mark a whole date unavailable.
func blockedDates(overrides []model.DateOverride) map[string]struct{} {
	blocked := make(map[string]struct{})
	for _, o := range overrides {
		if o.Start == o.End {
			blocked[o.Date] = struct{}{}
		}
	}
	return blocked
}

// expandWeekly lays the schedule's weekly hours over every local day touching
// [from, to).
func expandWeekly(sc *model.Schedule, loc *time.Location, from, to time.Time) ([]window.TimeWindow, error) {
	blocked := blockedDates(sc.DateOverrides)

	var out []window.TimeWindow
	for day := localMidnight(from, loc); day.Before(to); day = day.AddDate(0, 0, 1) {
		if _, ok := blocked[day.Format(time.DateOnly)]; ok {
			continue
		}
		weekday := int(day.Weekday())
		for _, hours := range sc.Availability {
			if !slices.Contains(hours.Days, weekday) {
				continue
			}
			w, err := dayRange(day, hours.Start, hours.End, sc.TimeZone)
			if err != nil {
				return nil, fmt.Errorf("schedule %s: %w", sc.ID, err)
			}
			out = append(out, w)
		}
	}
	return out, nil
}

// expandOverrides returns the override ranges whose date touches [from, to).
// Whole-day blocks are handled by expandWeekly and produce no range.
func expandOverrides(sc *model.Schedule, loc *time.Location, from, to time.Time) ([]window.TimeWindow, error) {
	first := localMidnight(from, loc)

	var out []window.TimeWindow
	for _, o := range sc.DateOverrides {
		if o.Start == o.End {
			continue
		}
		day, err := time.ParseInLocation(time.DateOnly, o.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: invalid override date %q: %w", sc.ID, o.Date, err)
		}
		if day.Before(first) || !day.Before(to) {
			continue
		}
		w, err := dayRange(day, o.Start, o.End, sc.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sc.ID, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func scheduleLocation(sc *model.Schedule) (*time.Location, error) {
	tz := sc.TimeZone
	if tz == "" {
		tz = window.DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", sc.ID, err)
	}
	return loc, nil
}
