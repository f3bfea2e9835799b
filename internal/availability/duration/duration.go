package duration

import (
	"slices"
	"time"

	"hostavail/internal/availability/domain"
	availerrors "hostavail/internal/availability/errors"
	"hostavail/pkg/logger"
)

// Validate checks that end-start is an admissible length for the event type:
// one of the allowed durations (or the base duration when none are listed), or,
// for multi-day event types, a whole number of days no shorter than the base.
func Validate(start, end time.Time, eventType *domain.EventTypeConfig) error {
	requested := int(end.Sub(start) / time.Minute)

	candidates := eventType.AllowedDurationsMinutes
	if len(candidates) == 0 {
		candidates = []int{eventType.BaseDurationMinutes}
	}
	if slices.Contains(candidates, requested) {
		return nil
	}

	if eventType.MultiDayEnabled &&
		requested >= eventType.BaseDurationMinutes &&
		requested > 0 &&
		requested%domain.MinutesInDay == 0 {
		return nil
	}

	return &availerrors.InvalidDurationError{
		RequestedMinutes: requested,
		AllowedMinutes:   slices.Clone(candidates),
		MultiDayEnabled:  eventType.MultiDayEnabled,
	}
}

func ValidateEventLength(log *logger.Logger, start, end time.Time, eventType *domain.EventTypeConfig) error {
	err := Validate(start, end, eventType)
	if err != nil {
		log.Warn("Invalid event length",
			"event_type_id", eventType.ID,
			"requested_minutes", int(end.Sub(start)/time.Minute),
			"base_duration_minutes", eventType.BaseDurationMinutes,
			"allowed_durations_minutes", eventType.AllowedDurationsMinutes,
			"multi_day_enabled", eventType.MultiDayEnabled,
		)
	}
	return err
}
