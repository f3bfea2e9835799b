package service

import (
	"time"

	"hostavail/internal/availability/domain"
	"hostavail/internal/availability/window"
)

const maxOccurrences = 730

// occurrences expands a recurring rule into the windows a booking series would
// occupy, starting with the requested window itself. Steps are taken in loc so
// wall-clock times survive DST changes.
func occurrences(requested window.TimeWindow, rule *domain.RecurringRule, loc *time.Location) []window.TimeWindow {
	if rule == nil || rule.Count <= 1 {
		return []window.TimeWindow{requested}
	}

	count := min(rule.Count, maxOccurrences)
	if loc == nil {
		loc = requested.Location()
	}
	start := requested.Start().In(loc)
	length := requested.Duration()

	out := make([]window.TimeWindow, 0, count)
	out = append(out, requested)
	for i := 1; i < count; i++ {
		var next time.Time
		switch rule.Frequency {
		case domain.Daily:
			next = start.AddDate(0, 0, i)
		case domain.Weekly:
			next = start.AddDate(0, 0, 7*i)
		case domain.Monthly:
			next = start.AddDate(0, i, 0)
		default:
			return out
		}
		w, err := window.New(next, next.Add(length), requested.TimeZone())
		if err != nil {
			return out
		}
		out = append(out, w)
	}
	return out
}
