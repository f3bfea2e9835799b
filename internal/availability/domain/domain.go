package domain

import (
	"time"

	"hostavail/internal/availability/window"
)

const MinutesInDay = 24 * 60

type Assignment int

const (
	Fixed Assignment = iota
	RoundRobin
)

func (a Assignment) String() string {
	if a == Fixed {
		return "fixed"
	}
	return "round_robin"
}

type CandidateUser struct {
	ID                string     `json:"id"`
	Assignment        Assignment `json:"-"`
	Credentials       []string   `json:"-"`
	SelectedCalendars []string   `json:"-"`
}

func (u CandidateUser) IsFixed() bool {
	return u.Assignment == Fixed
}

type LimitScope string

const (
	ScopeEventType LimitScope = "event_type"
	ScopeUser      LimitScope = "user"
)

// LimitPolicy caps bookings (or booked minutes) per calendar period. A zero
// value for a period means that period is not limited.
type LimitPolicy struct {
	Scope    LimitScope
	PerDay   int
	PerWeek  int
	PerMonth int
	PerYear  int
}

func (p *LimitPolicy) IsEmpty() bool {
	return p == nil || (p.PerDay <= 0 && p.PerWeek <= 0 && p.PerMonth <= 0 && p.PerYear <= 0)
}

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

type RecurringRule struct {
	Frequency Frequency
	Count     int
}

type EventTypeConfig struct {
	ID                      string
	BaseDurationMinutes     int
	AllowedDurationsMinutes []int
	MultiDayEnabled         bool
	BeforeBufferMinutes     int
	AfterBufferMinutes      int
	SeatsPerTimeSlot        *int
	BookingLimits           *LimitPolicy
	DurationLimits          *LimitPolicy
	RestrictionScheduleID   *string
	Recurring               *RecurringRule
	TimeZone                string
}

func (e *EventTypeConfig) IsSeated() bool {
	return e.SeatsPerTimeSlot != nil
}

// IsMultiDay reports whether a request of the given length is treated as a
// multi-day booking for this event type.
func (e *EventTypeConfig) IsMultiDay(minutes int) bool {
	return e.MultiDayEnabled && minutes >= MinutesInDay
}

func (e *EventTypeConfig) Location() *time.Location {
	if e.TimeZone == "" {
		return nil
	}
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		return nil
	}
	return loc
}

type SeatBooking struct {
	BookingID     string    `json:"booking_id"`
	Start         time.Time `json:"start"`
	AttendeeCount int       `json:"attendee_count"`
}

type UserAvailability struct {
	UserID                       string
	BusyIntervals                []window.TimeWindow
	WorkingHourIntervals         []window.TimeWindow
	DateOverrides                []window.TimeWindow
	OutOfOfficeExcludedIntervals []window.TimeWindow
	CurrentSeatBookings          []SeatBooking
	TimeZone                     string
}

func (u *UserAvailability) Location() *time.Location {
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type RejectionReason string

const (
	ReasonBusy                RejectionReason = "busy"
	ReasonOutsideWorkingHours RejectionReason = "outside_working_hours"
	ReasonSeatsFull           RejectionReason = "seats_full"
	ReasonRestricted          RejectionReason = "outside_restriction_schedule"
	ReasonBookingLimit        RejectionReason = "booking_limit"
	ReasonDurationLimit       RejectionReason = "duration_limit"
)

type Verdict struct {
	User               CandidateUser   `json:"user"`
	Fixed              bool            `json:"fixed"`
	IsAvailable        bool            `json:"is_available"`
	Reason             RejectionReason `json:"reason,omitempty"`
	MatchedSeatBooking *SeatBooking    `json:"matched_seat_booking,omitempty"`
}

type Decision struct {
	ID          string            `json:"decision_id"`
	EventTypeID string            `json:"event_type_id"`
	Window      window.TimeWindow `json:"window"`
	Available   []CandidateUser   `json:"available_users"`
	Verdicts    []Verdict         `json:"verdicts"`
	DecidedAt   time.Time         `json:"decided_at"`
}

func (d *Decision) Accepted() bool {
	return len(d.Available) > 0
}
