package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hostavail/internal/availability/conflicts"
	"hostavail/internal/availability/domain"
	"hostavail/internal/availability/duration"
	availerrors "hostavail/internal/availability/errors"
	"hostavail/internal/availability/limits"
	"hostavail/internal/availability/window"
	"hostavail/pkg/logger"
)

// AvailabilityProvider returns one UserAvailability per user, in input order.
type AvailabilityProvider interface {
	GetUsersAvailability(ctx context.Context, users []domain.CandidateUser, w window.TimeWindow, eventType *domain.EventTypeConfig) ([]domain.UserAvailability, error)
}

// BusyTimesProvider returns the bookings that count toward limits. A nil user
// asks for every booking of the event type.
type BusyTimesProvider interface {
	GetBusyTimesForLimitChecks(ctx context.Context, user *domain.CandidateUser, eventType *domain.EventTypeConfig, w window.TimeWindow) ([]window.TimeWindow, error)
}

type RestrictionProvider interface {
	GetRestrictionRanges(ctx context.Context, scheduleID string, w window.TimeWindow) ([]window.TimeWindow, error)
}

type AvailabilityService interface {
	EnsureAvailableUsers(ctx context.Context, eventType *domain.EventTypeConfig, requested window.TimeWindow, candidates []domain.CandidateUser) ([]domain.CandidateUser, error)
	Decide(ctx context.Context, eventType *domain.EventTypeConfig, requested window.TimeWindow, candidates []domain.CandidateUser) (*domain.Decision, error)
	ValidateEventLength(eventType *domain.EventTypeConfig, requested window.TimeWindow) error
}

type availabilityService struct {
	availability AvailabilityProvider
	busyTimes    BusyTimesProvider
	restrictions RestrictionProvider
	log          *logger.Logger
	now          func() time.Time
	newID        func() string
}

func NewAvailabilityService(
	availability AvailabilityProvider,
	busyTimes BusyTimesProvider,
	restrictions RestrictionProvider,
	log *logger.Logger,
) AvailabilityService {
	return &availabilityService{
		availability: availability,
		busyTimes:    busyTimes,
		restrictions: restrictions,
		log:          log,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (s *availabilityService) ValidateEventLength(eventType *domain.EventTypeConfig, requested window.TimeWindow) error {
	return duration.ValidateEventLength(s.log, requested.Start(), requested.End(), eventType)
}

func (s *availabilityService) EnsureAvailableUsers(
	ctx context.Context,
	eventType *domain.EventTypeConfig,
	requested window.TimeWindow,
	candidates []domain.CandidateUser,
) ([]domain.CandidateUser, error) {
	decision, err := s.Decide(ctx, eventType, requested, candidates)
	if err != nil {
		return nil, err
	}
	return decision.Available, nil
}

// Decide evaluates every candidate and aggregates the verdicts. When the
// request is rejected for lack of hosts the decision is still returned along
// with a NoAvailableUsersError. Duration and upstream failures return no decision.
func (s *availabilityService) Decide(
	ctx context.Context,
	eventType *domain.EventTypeConfig,
	requested window.TimeWindow,
	candidates []domain.CandidateUser,
) (*domain.Decision, error) {
	before := time.Duration(eventType.BeforeBufferMinutes) * time.Minute
	after := time.Duration(eventType.AfterBufferMinutes) * time.Minute

	if err := s.ValidateEventLength(eventType, requested); err != nil {
		return nil, err
	}

	decision := &domain.Decision{
		ID:          s.newID(),
		EventTypeID: eventType.ID,
		Window:      requested,
		Available:   []domain.CandidateUser{},
		Verdicts:    make([]domain.Verdict, len(candidates)),
		DecidedAt:   s.now().UTC(),
	}
	for i, u := range candidates {
		decision.Verdicts[i] = domain.Verdict{User: u, Fixed: u.IsFixed(), IsAvailable: true}
	}
	if len(candidates) == 0 {
		return decision, &availerrors.NoAvailableUsersError{}
	}

	loc := eventType.Location()
	if loc == nil {
		loc = requested.Location()
	}
	series := occurrences(requested, eventType.Recurring, loc)
	span := spanOf(series, before, after)

	rejections := make([]error, len(candidates))

	if id := eventType.RestrictionScheduleID; id != nil && *id != "" {
		allowed, err := s.withinRestriction(ctx, *id, eventType, series, span)
		if err != nil {
			return nil, err
		}
		if !allowed {
			for i, u := range candidates {
				rejections[i] = &availerrors.ConflictError{Kind: availerrors.OutsideRestriction, UserID: u.ID}
			}
		}
	}

	if err := s.checkLimits(ctx, eventType, requested, nil, loc); err != nil {
		if isUpstream(err) {
			return nil, err
		}
		for i := range candidates {
			if rejections[i] == nil {
				rejections[i] = err
			}
		}
	}

	for i := range candidates {
		if rejections[i] != nil {
			continue
		}
		if err := s.checkLimits(ctx, eventType, requested, &candidates[i], loc); err != nil {
			if isUpstream(err) {
				return nil, err
			}
			rejections[i] = err
		}
	}

	if err := s.checkConflicts(ctx, eventType, series, span, before, after, candidates, rejections, decision); err != nil {
		return nil, err
	}

	for i, err := range rejections {
		if err == nil {
			continue
		}
		reason, _ := availerrors.Reason(err)
		decision.Verdicts[i].IsAvailable = false
		decision.Verdicts[i].Reason = reason
		decision.Verdicts[i].MatchedSeatBooking = nil
		s.log.Debug("User unavailable for requested window",
			"event_type_id", eventType.ID,
			"user_id", candidates[i].ID,
			"assignment", candidates[i].Assignment.String(),
			"reason", string(reason),
			"error", err,
		)
	}

	return s.aggregate(decision)
}

func (s *availabilityService) checkConflicts(
	ctx context.Context,
	eventType *domain.EventTypeConfig,
	series []window.TimeWindow,
	span window.TimeWindow,
	before, after time.Duration,
	candidates []domain.CandidateUser,
	rejections []error,
	decision *domain.Decision,
) error {
	var pending []int
	var users []domain.CandidateUser
	for i, u := range candidates {
		if rejections[i] == nil {
			pending = append(pending, i)
			users = append(users, u)
		}
	}
	if len(users) == 0 {
		return nil
	}

	availability, err := s.availability.GetUsersAvailability(ctx, users, span, eventType)
	if err != nil {
		return availerrors.Upstream("get users availability", err)
	}
	if len(availability) != len(users) {
		return availerrors.Upstream("get users availability",
			fmt.Errorf("expected availability for %d users, got %d", len(users), len(availability)))
	}

	for k, idx := range pending {
		matched, err := checkSeries(candidates[idx], series, before, after, &availability[k], eventType)
		if err != nil {
			rejections[idx] = err
			continue
		}
		decision.Verdicts[idx].MatchedSeatBooking = matched
	}
	return nil
}

// checkSeries requires every occurrence to be free. The seat booking matched
// by the first occurrence is the one a new attendee would join.
func checkSeries(
	user domain.CandidateUser,
	series []window.TimeWindow,
	before, after time.Duration,
	availability *domain.UserAvailability,
	eventType *domain.EventTypeConfig,
) (*domain.SeatBooking, error) {
	var matched *domain.SeatBooking
	for i, occurrence := range series {
		seat, err := conflicts.CheckForConflicts(conflicts.Input{
			User:         user,
			Requested:    occurrence,
			Buffered:     occurrence.Expand(before, after),
			Availability: availability,
			EventType:    eventType,
		})
		if err != nil {
			return nil, err
		}
		if i == 0 {
			matched = seat
		}
	}
	return matched, nil
}

func (s *availabilityService) withinRestriction(
	ctx context.Context,
	scheduleID string,
	eventType *domain.EventTypeConfig,
	series []window.TimeWindow,
	span window.TimeWindow,
) (bool, error) {
	ranges, err := s.restrictions.GetRestrictionRanges(ctx, scheduleID, span)
	if err != nil {
		return false, availerrors.Upstream("get restriction ranges", err)
	}

	for _, occurrence := range series {
		if !covered(ranges, occurrence, eventType.IsMultiDay(occurrence.Minutes())) {
			s.log.Debug("Requested window outside restriction schedule",
				"event_type_id", eventType.ID,
				"restriction_schedule_id", scheduleID,
				"window", occurrence.String(),
			)
			return false, nil
		}
	}
	return true, nil
}

func covered(ranges []window.TimeWindow, w window.TimeWindow, multiDay bool) bool {
	if !multiDay {
		return window.ContainedInAny(ranges, w)
	}
	for _, r := range ranges {
		if r.Includes(w.Start()) {
			return true
		}
	}
	return false
}

func policyScope(p *domain.LimitPolicy) domain.LimitScope {
	if p.Scope == "" {
		return domain.ScopeEventType
	}
	return p.Scope
}

// checkLimits evaluates the limit policies of one scope: event-type scope when
// user is nil, user scope otherwise.
func (s *availabilityService) checkLimits(
	ctx context.Context,
	eventType *domain.EventTypeConfig,
	requested window.TimeWindow,
	user *domain.CandidateUser,
	loc *time.Location,
) error {
	scope := domain.ScopeEventType
	userID := ""
	if user != nil {
		scope = domain.ScopeUser
		userID = user.ID
	}

	booking := eventType.BookingLimits
	if booking.IsEmpty() || policyScope(booking) != scope {
		booking = nil
	}
	durationPolicy := eventType.DurationLimits
	if durationPolicy.IsEmpty() || policyScope(durationPolicy) != scope {
		durationPolicy = nil
	}
	if booking == nil && durationPolicy == nil {
		return nil
	}

	busy, err := s.busyTimes.GetBusyTimesForLimitChecks(ctx, user, eventType, requested)
	if err != nil {
		return availerrors.Upstream("get busy times for limit checks", err)
	}

	if booking != nil {
		if err := limits.CheckBookingLimit(booking, requested, busy, loc, userID); err != nil {
			return err
		}
	}
	if durationPolicy != nil {
		if err := limits.CheckDurationLimit(durationPolicy, requested, busy, loc, userID); err != nil {
			return err
		}
	}
	return nil
}

// aggregate applies host semantics: every fixed host must be free. Round-robin
// hosts that failed are dropped; the request only fails on them when nobody is
// left.
func (s *availabilityService) aggregate(decision *domain.Decision) (*domain.Decision, error) {
	var unavailableFixed []string
	rejected := 0
	for _, v := range decision.Verdicts {
		if v.IsAvailable {
			continue
		}
		rejected++
		if v.Fixed {
			unavailableFixed = append(unavailableFixed, v.User.ID)
		}
	}

	if len(unavailableFixed) == 0 {
		for _, v := range decision.Verdicts {
			if v.IsAvailable {
				decision.Available = append(decision.Available, v.User)
			}
		}
	}

	if len(decision.Available) == 0 {
		s.log.Warn("No available users found",
			"decision_id", decision.ID,
			"event_type_id", decision.EventTypeID,
			"unavailable_fixed_users", unavailableFixed,
			"rejected", rejected,
		)
		return decision, &availerrors.NoAvailableUsersError{UnavailableFixed: unavailableFixed, Rejected: rejected}
	}

	s.log.Debug("Availability decided",
		"decision_id", decision.ID,
		"event_type_id", decision.EventTypeID,
		"available_users", len(decision.Available),
		"rejected", rejected,
	)
	return decision, nil
}

func spanOf(series []window.TimeWindow, before, after time.Duration) window.TimeWindow {
	first := series[0]
	last := series[len(series)-1]
	return window.MustNew(first.Start().Add(-before), last.End().Add(after), first.TimeZone())
}

func isUpstream(err error) bool {
	var upstream *availerrors.UpstreamFetchError
	return errors.As(err, &upstream)
}
