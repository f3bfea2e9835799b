// Package provider assembles the engine's inputs from MongoDB: per-user
// availability, the bookings that count toward limits, and restriction
// schedule ranges.
package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"hostavail/internal/availability/domain"
	"hostavail/internal/availability/limits"
	"hostavail/internal/availability/repository"
	"hostavail/internal/availability/validator"
	"hostavail/internal/availability/window"
	"hostavail/pkg/logger"
	"hostavail/pkg/model"
)

const lookaround = 24 * time.Hour

type Provider struct {
	bookings    repository.BookingRepository
	schedules   repository.ScheduleRepository
	outOfOffice repository.OutOfOfficeRepository
	validator   *validator.AvailabilityValidator
	concurrency int
	log         *logger.Logger
}

func New(
	bookings repository.BookingRepository,
	schedules repository.ScheduleRepository,
	outOfOffice repository.OutOfOfficeRepository,
	validator *validator.AvailabilityValidator,
	concurrency int,
	log *logger.Logger,
) *Provider {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Provider{
		bookings:    bookings,
		schedules:   schedules,
		outOfOffice: outOfOffice,
		validator:   validator,
		concurrency: concurrency,
		log:         log,
	}
}

// GetUsersAvailability fetches every user concurrently. The result is in the
// same order as users; the first failure cancels the rest.
func (p *Provider) GetUsersAvailability(
	ctx context.Context,
	users []domain.CandidateUser,
	w window.TimeWindow,
	eventType *domain.EventTypeConfig,
) ([]domain.UserAvailability, error) {
	out := make([]domain.UserAvailability, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			availability, err := p.userAvailability(gctx, user, w, eventType)
			if err != nil {
				return fmt.Errorf("user %s: %w", user.ID, err)
			}
			out[i] = availability
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.log.Error("Failed to fetch users availability",
			"event_type_id", eventType.ID,
			"users", len(users),
			"error", err,
		)
		return nil, err
	}
	return out, nil
}

func (p *Provider) userAvailability(
	ctx context.Context,
	user domain.CandidateUser,
	w window.TimeWindow,
	eventType *domain.EventTypeConfig,
) (domain.UserAvailability, error) {
	from := w.Start().Add(-lookaround)
	to := w.End().Add(lookaround)

	availability := domain.UserAvailability{
		UserID:   user.ID,
		TimeZone: w.TimeZone(),
	}

	sc, err := p.schedules.FindDefaultByUser(ctx, user.ID)
	if err != nil {
		return availability, err
	}
	if sc != nil {
		loc, err := p.location(sc)
		if err != nil {
			return availability, err
		}
		availability.TimeZone = loc.String()
		if availability.WorkingHourIntervals, err = expandWeekly(sc, loc, from, to); err != nil {
			return availability, err
		}
		if availability.DateOverrides, err = expandOverrides(sc, loc, from, to); err != nil {
			return availability, err
		}
	}

	bookings, err := p.bookings.FindBlockingByHost(ctx, user.ID, from, to)
	if err != nil {
		return availability, err
	}
	for _, b := range bookings {
		seat := eventType.IsSeated() && b.EventTypeID == eventType.ID
		// A seat booking nobody attends anymore frees its slot.
		if seat && b.AttendeeCount <= 0 {
			continue
		}
		busy, ok := p.bookingWindow(b, availability.TimeZone)
		if !ok {
			continue
		}
		availability.BusyIntervals = append(availability.BusyIntervals, busy)
		if seat {
			availability.CurrentSeatBookings = append(availability.CurrentSeatBookings, domain.SeatBooking{
				BookingID:     b.ID,
				Start:         busy.Start(),
				AttendeeCount: b.AttendeeCount,
			})
		}
	}

	entries, err := p.outOfOffice.FindByUser(ctx, user.ID, from, to)
	if err != nil {
		return availability, err
	}
	for _, e := range entries {
		ooo, err := window.New(e.StartTime, e.EndTime, availability.TimeZone)
		if err != nil {
			p.log.Warn("Skipping malformed out of office entry", "id", e.ID, "user_id", user.ID, "error", err)
			continue
		}
		if e.Blocking {
			availability.BusyIntervals = append(availability.BusyIntervals, ooo)
		} else {
			availability.OutOfOfficeExcludedIntervals = append(availability.OutOfOfficeExcludedIntervals, ooo)
		}
	}

	return availability, nil
}

func (p *Provider) bookingWindow(b *model.Booking, tz string) (window.TimeWindow, bool) {
	if !b.Blocking() {
		return window.TimeWindow{}, false
	}
	w, err := window.New(b.StartTime, b.EndTime, tz)
	if err != nil {
		p.log.Warn("Skipping malformed booking", "id", b.ID, "error", err)
		return window.TimeWindow{}, false
	}
	return w, true
}

// GetBusyTimesForLimitChecks returns the blocking bookings of the calendar
// year around the request. A nil user selects the event type's bookings;
// otherwise every booking the user hosts counts.
func (p *Provider) GetBusyTimesForLimitChecks(
	ctx context.Context,
	user *domain.CandidateUser,
	eventType *domain.EventTypeConfig,
	w window.TimeWindow,
) ([]window.TimeWindow, error) {
	loc := eventType.Location()
	if loc == nil {
		loc = w.Location()
	}
	from, to := limits.SearchRange(w.Start(), loc)

	var (
		bookings []*model.Booking
		err      error
	)
	if user == nil {
		bookings, err = p.bookings.FindBlockingByEventType(ctx, eventType.ID, from, to)
	} else {
		bookings, err = p.bookings.FindBlockingByHost(ctx, user.ID, from, to)
	}
	if err != nil {
		return nil, err
	}

	busy := make([]window.TimeWindow, 0, len(bookings))
	for _, b := range bookings {
		if bw, ok := p.bookingWindow(b, w.TimeZone()); ok {
			busy = append(busy, bw)
		}
	}
	return busy, nil
}

// GetRestrictionRanges expands the restriction schedule, overrides applied,
// around w.
func (p *Provider) GetRestrictionRanges(ctx context.Context, scheduleID string, w window.TimeWindow) ([]window.TimeWindow, error) {
	sc, err := p.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	loc, err := p.location(sc)
	if err != nil {
		return nil, err
	}

	from := w.Start().Add(-lookaround)
	to := w.End().Add(lookaround)

	hours, err := expandWeekly(sc, loc, from, to)
	if err != nil {
		return nil, err
	}
	overrides, err := expandOverrides(sc, loc, from, to)
	if err != nil {
		return nil, err
	}
	return window.MergeOverrides(hours, overrides, loc), nil
}

// location validates a stored schedule and resolves its time zone.
func (p *Provider) location(sc *model.Schedule) (*time.Location, error) {
	if err := p.validator.ValidateSchedule(sc); err != nil {
		return nil, fmt.Errorf("schedule %s is invalid: %w", sc.ID, err)
	}
	return scheduleLocation(sc)
}
