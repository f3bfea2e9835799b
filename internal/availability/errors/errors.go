package errors

import (
	"errors"
	"fmt"

	"hostavail/internal/availability/domain"
	"hostavail/internal/availability/window"
	apperrors "hostavail/pkg/errors"
)

const InvalidEventLengthMessage = "Invalid event length"

var (
	ErrEventTypeNotFound = errors.New("event type not found")
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrInvalidID         = errors.New("invalid ID format")
)

type InvalidDurationError struct {
	RequestedMinutes int
	AllowedMinutes   []int
	MultiDayEnabled  bool
}

func (e *InvalidDurationError) Error() string {
	return InvalidEventLengthMessage
}

type ConflictKind string

const (
	Busy                ConflictKind = "busy"
	OutsideWorkingHours ConflictKind = "outside_working_hours"
	SeatsFull           ConflictKind = "seats_full"
	OutsideRestriction  ConflictKind = "outside_restriction_schedule"
)

type ConflictError struct {
	Kind   ConflictKind
	UserID string
	// Interval is the busy interval that caused a Busy conflict.
	Interval *window.TimeWindow
}

func (e *ConflictError) Error() string {
	if e.Interval != nil {
		return fmt.Sprintf("user %s unavailable: %s (%s)", e.UserID, e.Kind, e.Interval)
	}
	return fmt.Sprintf("user %s unavailable: %s", e.UserID, e.Kind)
}

func (e *ConflictError) Reason() domain.RejectionReason {
	switch e.Kind {
	case Busy:
		return domain.ReasonBusy
	case SeatsFull:
		return domain.ReasonSeatsFull
	case OutsideRestriction:
		return domain.ReasonRestricted
	default:
		return domain.ReasonOutsideWorkingHours
	}
}

type LimitKind string

const (
	BookingLimit  LimitKind = "booking"
	DurationLimit LimitKind = "duration"
)

type LimitExceededError struct {
	Kind   LimitKind
	Scope  domain.LimitScope
	Period string
	Limit  int
	// Used is the bookings counted (or minutes summed) in the period, including the request.
	Used   int
	UserID string
}

func (e *LimitExceededError) Error() string {
	unit := "bookings"
	if e.Kind == DurationLimit {
		unit = "minutes"
	}
	if e.UserID == "" {
		return fmt.Sprintf("%s limit exceeded for event type: %d/%d %s per %s", e.Kind, e.Used, e.Limit, unit, e.Period)
	}
	return fmt.Sprintf("%s limit exceeded for user %s: %d/%d %s per %s", e.Kind, e.UserID, e.Used, e.Limit, unit, e.Period)
}

func (e *LimitExceededError) Reason() domain.RejectionReason {
	if e.Kind == DurationLimit {
		return domain.ReasonDurationLimit
	}
	return domain.ReasonBookingLimit
}

type NoAvailableUsersError struct {
	// UnavailableFixed lists fixed hosts that failed their checks.
	UnavailableFixed []string
	Rejected         int
}

func (e *NoAvailableUsersError) Error() string {
	if len(e.UnavailableFixed) > 0 {
		return fmt.Sprintf("no available users found: fixed hosts unavailable %v", e.UnavailableFixed)
	}
	return "no available users found"
}

type UpstreamFetchError struct {
	Op  string
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var already *UpstreamFetchError
	if errors.As(err, &already) {
		return err
	}
	return &UpstreamFetchError{Op: op, Err: err}
}

// Reason extracts the rejection reason from a per-user conflict or limit error.
func Reason(err error) (domain.RejectionReason, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Reason(), true
	}
	var limit *LimitExceededError
	if errors.As(err, &limit) {
		return limit.Reason(), true
	}
	return "", false
}

// ToAppError maps engine errors onto the client-facing error envelope.
func ToAppError(err error) *apperrors.AppError {
	var (
		invalidDuration *InvalidDurationError
		noUsers         *NoAvailableUsersError
		limit           *LimitExceededError
		conflict        *ConflictError
		upstream        *UpstreamFetchError
	)

	switch {
	case errors.As(err, &invalidDuration):
		return apperrors.InvalidEventLength(InvalidEventLengthMessage, err).
			WithDetails(map[string]any{
				"requested_minutes": invalidDuration.RequestedMinutes,
				"allowed_minutes":   invalidDuration.AllowedMinutes,
				"multi_day_enabled": invalidDuration.MultiDayEnabled,
			})
	case errors.As(err, &noUsers):
		return apperrors.NoAvailableUsers("No available users found", err).
			WithDetails(map[string]any{
				"unavailable_fixed_users": noUsers.UnavailableFixed,
				"rejected":                noUsers.Rejected,
			})
	case errors.As(err, &limit):
		return apperrors.LimitExceeded(limit.Error(), err)
	case errors.As(err, &conflict):
		return apperrors.Conflict(conflict.Error(), err)
	case errors.As(err, &upstream):
		return apperrors.UpstreamFailure("Failed to fetch availability data", err)
	case errors.Is(err, ErrEventTypeNotFound):
		return apperrors.NotFound("Event type")
	case errors.Is(err, ErrInvalidID):
		return apperrors.InvalidInput("Invalid event type ID format")
	default:
		return apperrors.AsAppError(err)
	}
}
