package service

import (
	"context"
	"errors"
	"time"

	"hostavail/internal/availability/domain"
	availerrors "hostavail/internal/availability/errors"
	"hostavail/internal/availability/events"
	"hostavail/internal/availability/validator"
	"hostavail/internal/availability/window"
	"hostavail/pkg/config"
	apperrors "hostavail/pkg/errors"
	"hostavail/pkg/middleware"
	"hostavail/pkg/model"
	"hostavail/pkg/sanitizer"
)

type EventTypeSource interface {
	GetEventType(ctx context.Context, id string) (*domain.EventTypeConfig, error)
}

type DecisionObserver interface {
	ObserveDecision(decision *domain.Decision, elapsed time.Duration)
}

// CheckService is the request-facing side of the engine: it validates input,
// loads the event type and reports the outcome as AppErrors.
type CheckService interface {
	Check(ctx context.Context, req *model.AvailabilityCheckRequest) (*domain.Decision, error)
	ValidateLength(ctx context.Context, req *model.ValidateLengthRequest) error
}

type checkService struct {
	availability AvailabilityService
	eventTypes   EventTypeSource
	validator    *validator.AvailabilityValidator
	publisher    events.DecisionPublisher
	observer     DecisionObserver
	cfg          *config.Config
}

func NewCheckService(
	availability AvailabilityService,
	eventTypes EventTypeSource,
	validator *validator.AvailabilityValidator,
	publisher events.DecisionPublisher,
	observer DecisionObserver,
	cfg *config.Config,
) CheckService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &checkService{
		availability: availability,
		eventTypes:   eventTypes,
		validator:    validator,
		publisher:    publisher,
		observer:     observer,
		cfg:          cfg,
	}
}

// Check decides which of the requested users can host. A rejected request
// returns the decision together with a 409 AppError.
func (s *checkService) Check(ctx context.Context, req *model.AvailabilityCheckRequest) (*domain.Decision, error) {
	sanitizer.SanitizeCheckRequest(req)
	if err := s.validator.ValidateCheckRequest(req); err != nil {
		s.cfg.Log.Warn("Availability request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid availability request", map[string]any{"error": err.Error()})
	}

	requested, err := window.Parse(req.Start, req.End, req.TimeZone)
	if err != nil {
		return nil, windowError(err)
	}

	eventType, err := s.eventTypes.GetEventType(ctx, req.EventTypeID)
	if err != nil {
		return nil, availerrors.ToAppError(err)
	}
	if req.TimeZone == "" && eventType.TimeZone != "" {
		if requested, err = window.New(requested.Start(), requested.End(), eventType.TimeZone); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
	}

	candidates := make([]domain.CandidateUser, len(req.Users))
	for i, u := range req.Users {
		candidates[i] = domain.CandidateUser{ID: u.ID, Assignment: domain.RoundRobin}
		if u.Fixed {
			candidates[i].Assignment = domain.Fixed
		}
	}

	start := time.Now()
	decision, err := s.availability.Decide(ctx, eventType, requested, candidates)
	if s.observer != nil {
		s.observer.ObserveDecision(decision, time.Since(start))
	}

	if decision != nil {
		s.publish(ctx, decision)
	}

	if err != nil {
		return decision, availerrors.ToAppError(err)
	}

	s.cfg.Log.Info("Availability decided",
		"decision_id", decision.ID,
		"event_type_id", eventType.ID,
		"available", len(decision.Available),
		"candidates", len(candidates),
	)
	return decision, nil
}

// publish is best-effort: a failed publish is logged and never changes the
// decision returned to the caller.
func (s *checkService) publish(ctx context.Context, decision *domain.Decision) {
	if err := s.publisher.PublishDecision(ctx, decision, middleware.RequestIDFromContext(ctx)); err != nil {
		s.cfg.Log.Warn("Failed to publish availability decision",
			"decision_id", decision.ID,
			"event_type_id", decision.EventTypeID,
			"error", err,
		)
	}
}

func (s *checkService) ValidateLength(ctx context.Context, req *model.ValidateLengthRequest) error {
	sanitizer.SanitizeValidateLengthRequest(req)
	if err := s.validator.ValidateLengthRequest(req); err != nil {
		s.cfg.Log.Warn("Length request validation failed", "error", err)
		return apperrors.Validation("Invalid length request", map[string]any{"error": err.Error()})
	}

	requested, err := window.Parse(req.Start, req.End, "")
	if err != nil {
		return windowError(err)
	}

	eventType, err := s.eventTypes.GetEventType(ctx, req.EventTypeID)
	if err != nil {
		return availerrors.ToAppError(err)
	}

	if err := s.availability.ValidateEventLength(eventType, requested); err != nil {
		return availerrors.ToAppError(err)
	}
	return nil
}

// windowError reports an end at or before the start as an inadmissible length.
func windowError(err error) *apperrors.AppError {
	if errors.Is(err, window.ErrEmptyWindow) {
		return apperrors.InvalidEventLength(availerrors.InvalidEventLengthMessage, err)
	}
	return apperrors.InvalidInput(err.Error())
}
