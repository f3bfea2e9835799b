// Package window implements the half-open time ranges the availability engine
// compares. Every instant is normalized to whole seconds in UTC when a window is
// built; the zone a window carries only matters for display and for calendar
// arithmetic done by callers.
package window

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

const DefaultTimeZone = "UTC"

var (
	ErrEmptyWindow     = errors.New("window start must be before its end")
	ErrInvalidTimeZone = errors.New("invalid IANA time zone")
	ErrInvalidInstant  = errors.New("invalid ISO-8601 instant")
)

type TimeWindow struct {
	start    time.Time
	end      time.Time
	timeZone string
}

func New(start, end time.Time, tz string) (TimeWindow, error) {
	if tz == "" {
		tz = DefaultTimeZone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return TimeWindow{}, fmt.Errorf("%w: %q", ErrInvalidTimeZone, tz)
	}

	start = normalize(start)
	end = normalize(end)
	if !start.Before(end) {
		return TimeWindow{}, fmt.Errorf("%w: %s >= %s", ErrEmptyWindow, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	return TimeWindow{start: start, end: end, timeZone: tz}, nil
}

// MustNew is New for literals that are known to be valid.
func MustNew(start, end time.Time, tz string) TimeWindow {
	w, err := New(start, end, tz)
	if err != nil {
		panic(err)
	}
	return w
}

func Parse(startISO, endISO, tz string) (TimeWindow, error) {
	start, err := time.Parse(time.RFC3339, startISO)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: start %q", ErrInvalidInstant, startISO)
	}
	end, err := time.Parse(time.RFC3339, endISO)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: end %q", ErrInvalidInstant, endISO)
	}
	return New(start, end, tz)
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (w TimeWindow) Start() time.Time { return w.start }

func (w TimeWindow) End() time.Time { return w.end }

func (w TimeWindow) TimeZone() string { return w.timeZone }

func (w TimeWindow) IsZero() bool { return w.start.IsZero() && w.end.IsZero() }

func (w TimeWindow) Duration() time.Duration { return w.end.Sub(w.start) }

// Minutes is the length of the window in whole minutes, rounded down.
func (w TimeWindow) Minutes() int {
	return int(w.Duration() / time.Minute)
}

func (w TimeWindow) Location() *time.Location {
	loc, err := time.LoadLocation(w.timeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// In returns the window bounds expressed in the window's own zone.
func (w TimeWindow) In() (time.Time, time.Time) {
	loc := w.Location()
	return w.start.In(loc), w.end.In(loc)
}

// Expand pads the window on both sides. Negative padding is treated as zero.
func (w TimeWindow) Expand(before, after time.Duration) TimeWindow {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}
	return TimeWindow{
		start:    w.start.Add(-before),
		end:      w.end.Add(after),
		timeZone: w.timeZone,
	}
}

// Shift moves both bounds by the same amount.
func (w TimeWindow) Shift(d time.Duration) TimeWindow {
	return TimeWindow{start: w.start.Add(d), end: w.end.Add(d), timeZone: w.timeZone}
}

// Includes reports whether t lies in [start, end).
func (w TimeWindow) Includes(t time.Time) bool {
	t = normalize(t)
	return !t.Before(w.start) && t.Before(w.end)
}

func (w TimeWindow) Equal(o TimeWindow) bool {
	return w.start.Equal(o.start) && w.end.Equal(o.end)
}

func (w TimeWindow) String() string {
	start, end := w.In()
	return fmt.Sprintf("[%s, %s)", start.Format(time.RFC3339), end.Format(time.RFC3339))
}

type jsonWindow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	TimeZone string    `json:"time_zone"`
}

func (w TimeWindow) MarshalJSON() ([]byte, error) {
	start, end := w.In()
	return json.Marshal(jsonWindow{Start: start, End: end, TimeZone: w.timeZone})
}

func (w *TimeWindow) UnmarshalJSON(data []byte) error {
	var raw jsonWindow
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := New(raw.Start, raw.End, raw.TimeZone)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Overlaps treats both windows as half-open, so touching endpoints do not overlap.
func Overlaps(a, b TimeWindow) bool {
	return a.start.Before(b.end) && b.start.Before(a.end)
}

func Contains(outer, inner TimeWindow) bool {
	return !inner.start.Before(outer.start) && !outer.end.Before(inner.end)
}

// ContainedInAny reports whether some window in set contains w.
func ContainedInAny(set []TimeWindow, w TimeWindow) bool {
	for _, candidate := range set {
		if Contains(candidate, w) {
			return true
		}
	}
	return false
}

// Sort orders windows by start, then by end. The input is not modified.
func Sort(ws []TimeWindow) []TimeWindow {
	out := make([]TimeWindow, len(ws))
	copy(out, ws)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].start.Equal(out[j].start) {
			return out[i].end.Before(out[j].end)
		}
		return out[i].start.Before(out[j].start)
	})
	return out
}

// MergeOverrides builds the set of ranges a user can be booked in. A date
// override replaces every working-hour range that starts on the same calendar
// day in loc; days without an override keep their working hours. The result
// is coalesced.
func MergeOverrides(workingHours, overrides []TimeWindow, loc *time.Location) []TimeWindow {
	if loc == nil {
		loc = time.UTC
	}

	overridden := make(map[string]struct{}, len(overrides))
	for _, o := range overrides {
		overridden[dayKey(o.start, loc)] = struct{}{}
	}

	merged := make([]TimeWindow, 0, len(workingHours)+len(overrides))
	for _, wh := range workingHours {
		if _, ok := overridden[dayKey(wh.start, loc)]; ok {
			continue
		}
		merged = append(merged, wh)
	}
	merged = append(merged, overrides...)

	return Coalesce(merged)
}

// Coalesce sorts ws and joins windows that overlap or touch, so a range split
// at noon or at midnight reads as one continuous range.
func Coalesce(ws []TimeWindow) []TimeWindow {
	sorted := Sort(ws)
	if len(sorted) == 0 {
		return sorted
	}

	out := sorted[:1]
	for _, next := range sorted[1:] {
		cur := &out[len(out)-1]
		if next.start.After(cur.end) {
			out = append(out, next)
			continue
		}
		if next.end.After(cur.end) {
			cur.end = next.end
		}
	}
	return out
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}
