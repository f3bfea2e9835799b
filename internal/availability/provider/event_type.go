package provider

import (
	"context"
	"slices"

	"hostavail/internal/availability/domain"
	"hostavail/internal/availability/repository"
	"hostavail/internal/availability/validator"
	apperrors "hostavail/pkg/errors"
	"hostavail/pkg/logger"
	"hostavail/pkg/model"
)

type EventTypeSource struct {
	repo      repository.EventTypeRepository
	validator *validator.AvailabilityValidator
	log       *logger.Logger
}

func NewEventTypeSource(repo repository.EventTypeRepository, validator *validator.AvailabilityValidator, log *logger.Logger) *EventTypeSource {
	return &EventTypeSource{repo: repo, validator: validator, log: log}
}

// GetEventType loads an event type and converts it for the engine. Documents
// that fail validation are reported as internal errors.
func (s *EventTypeSource) GetEventType(ctx context.Context, id string) (*domain.EventTypeConfig, error) {
	et, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateEventType(et); err != nil {
		s.log.Error("Stored event type is invalid", "event_type_id", id, "error", err)
		return nil, apperrors.Internal("Event type is misconfigured", err)
	}

	return ToEventTypeConfig(et), nil
}

func ToEventTypeConfig(et *model.EventType) *domain.EventTypeConfig {
	cfg := &domain.EventTypeConfig{
		ID:                      et.ID,
		BaseDurationMinutes:     et.LengthMin,
		AllowedDurationsMinutes: slices.Clone(et.MultipleDurationsMin),
		MultiDayEnabled:         et.MultiDayEnabled,
		BeforeBufferMinutes:     et.BeforeBufferMin,
		AfterBufferMinutes:      et.AfterBufferMin,
		BookingLimits:           toLimitPolicy(et.BookingLimits),
		DurationLimits:          toLimitPolicy(et.DurationLimits),
		TimeZone:                et.TimeZone,
	}
	if et.SeatsPerTimeSlot != nil {
		seats := *et.SeatsPerTimeSlot
		cfg.SeatsPerTimeSlot = &seats
	}
	if et.RestrictionScheduleID != nil && *et.RestrictionScheduleID != "" {
		id := *et.RestrictionScheduleID
		cfg.RestrictionScheduleID = &id
	}
	if et.Recurring != nil {
		cfg.Recurring = &domain.RecurringRule{
			Frequency: domain.Frequency(et.Recurring.Frequency),
			Count:     et.Recurring.Count,
		}
	}
	return cfg
}

func toLimitPolicy(p *model.LimitPolicy) *domain.LimitPolicy {
	if p == nil {
		return nil
	}
	scope := domain.LimitScope(p.Scope)
	if scope == "" {
		scope = domain.ScopeEventType
	}
	return &domain.LimitPolicy{
		Scope:    scope,
		PerDay:   p.PerDay,
		PerWeek:  p.PerWeek,
		PerMonth: p.PerMonth,
		PerYear:  p.PerYear,
	}
}
