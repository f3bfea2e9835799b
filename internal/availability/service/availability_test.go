package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostavail/internal/availability/domain"
	availerrors "hostavail/internal/availability/errors"
	"hostavail/internal/availability/window"
	"hostavail/pkg/logger"
)

type stubAvailabilityProvider struct {
	calls                    int
	getUsersAvailabilityFunc func(ctx context.Context, users []domain.CandidateUser, w window.TimeWindow, eventType *domain.EventTypeConfig) ([]domain.UserAvailability, error)
}

func (s *stubAvailabilityProvider) GetUsersAvailability(ctx context.Context, users []domain.CandidateUser, w window.TimeWindow, eventType *domain.EventTypeConfig) ([]domain.UserAvailability, error) {
	s.calls++
	if s.getUsersAvailabilityFunc != nil {
		return s.getUsersAvailabilityFunc(ctx, users, w, eventType)
	}
	out := make([]domain.UserAvailability, len(users))
	for i, u := range users {
		out[i] = workday(u.ID)
	}
	return out, nil
}

type stubBusyTimesProvider struct {
	calls    int
	busyFunc func(ctx context.Context, user *domain.CandidateUser, eventType *domain.EventTypeConfig, w window.TimeWindow) ([]window.TimeWindow, error)
}

func (s *stubBusyTimesProvider) GetBusyTimesForLimitChecks(ctx context.Context, user *domain.CandidateUser, eventType *domain.EventTypeConfig, w window.TimeWindow) ([]window.TimeWindow, error) {
	s.calls++
	if s.busyFunc != nil {
		return s.busyFunc(ctx, user, eventType, w)
	}
	return nil, nil
}

type stubRestrictionProvider struct {
	rangesFunc func(ctx context.Context, scheduleID string, w window.TimeWindow) ([]window.TimeWindow, error)
}

func (s *stubRestrictionProvider) GetRestrictionRanges(ctx context.Context, scheduleID string, w window.TimeWindow) ([]window.TimeWindow, error) {
	if s.rangesFunc != nil {
		return s.rangesFunc(ctx, scheduleID, w)
	}
	return nil, nil
}

var monday = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func slot(fromHour, fromMin, toHour, toMin int) window.TimeWindow {
	return window.MustNew(at(fromHour, fromMin), at(toHour, toMin), "UTC")
}

// workday is 09:00-17:00 UTC every day of the week under test.
func workday(userID string) domain.UserAvailability {
	var hours []window.TimeWindow
	for d := -1; d < 8; d++ {
		day := monday.AddDate(0, 0, d)
		hours = append(hours, window.MustNew(day.Add(9*time.Hour), day.Add(17*time.Hour), "UTC"))
	}
	return domain.UserAvailability{UserID: userID, TimeZone: "UTC", WorkingHourIntervals: hours}
}

func fixed(id string) domain.CandidateUser {
	return domain.CandidateUser{ID: id, Assignment: domain.Fixed}
}

func roundRobin(id string) domain.CandidateUser {
	return domain.CandidateUser{ID: id, Assignment: domain.RoundRobin}
}

func ids(users []domain.CandidateUser) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func newTestService(a *stubAvailabilityProvider, b *stubBusyTimesProvider, r *stubRestrictionProvider) *availabilityService {
	if a == nil {
		a = &stubAvailabilityProvider{}
	}
	if b == nil {
		b = &stubBusyTimesProvider{}
	}
	if r == nil {
		r = &stubRestrictionProvider{}
	}
	return &availabilityService{
		availability: a,
		busyTimes:    b,
		restrictions: r,
		log:          logger.NewNop(),
		now:          func() time.Time { return monday },
		newID:        func() string { return "decision-1" },
	}
}

func busyFor(busy map[string][]window.TimeWindow) *stubAvailabilityProvider {
	return &stubAvailabilityProvider{
		getUsersAvailabilityFunc: func(_ context.Context, users []domain.CandidateUser, _ window.TimeWindow, _ *domain.EventTypeConfig) ([]domain.UserAvailability, error) {
			out := make([]domain.UserAvailability, len(users))
			for i, u := range users {
				out[i] = workday(u.ID)
				out[i].BusyIntervals = busy[u.ID]
			}
			return out, nil
		},
	}
}

func TestEnsureAvailableUsers_SingleFixedUserFree(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	available, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner")},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, ids(available))
}

func TestEnsureAvailableUsers_InvalidDurationBeforeAnyFetch(t *testing.T) {
	provider := &stubAvailabilityProvider{}
	busyTimes := &stubBusyTimesProvider{}
	svc := newTestService(provider, busyTimes, nil)

	_, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, BookingLimits: &domain.LimitPolicy{PerDay: 1}},
		slot(10, 0, 11, 30),
		[]domain.CandidateUser{fixed("owner")},
	)

	var invalid *availerrors.InvalidDurationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 90, invalid.RequestedMinutes)
	assert.Zero(t, provider.calls)
	assert.Zero(t, busyTimes.calls)
}

func TestEnsureAvailableUsers_FixedFreeRoundRobinBusy(t *testing.T) {
	svc := newTestService(busyFor(map[string][]window.TimeWindow{
		"rr": {slot(10, 0, 11, 0)},
	}), nil, nil)

	available, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner"), roundRobin("rr")},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, ids(available))
}

func TestEnsureAvailableUsers_FixedFreeOneOfTwoRoundRobinBusy(t *testing.T) {
	svc := newTestService(busyFor(map[string][]window.TimeWindow{
		"rr-1": {slot(10, 0, 11, 0)},
	}), nil, nil)

	available, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{roundRobin("rr-1"), fixed("owner"), roundRobin("rr-2")},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"owner", "rr-2"}, ids(available))
}

func TestDecide_VerdictsKeepRejectedRoundRobin(t *testing.T) {
	svc := newTestService(busyFor(map[string][]window.TimeWindow{
		"rr": {slot(10, 0, 11, 0)},
	}), nil, nil)

	decision, err := svc.Decide(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner"), roundRobin("rr")},
	)

	require.NoError(t, err)
	require.Len(t, decision.Verdicts, 2)
	assert.True(t, decision.Verdicts[0].IsAvailable)
	assert.True(t, decision.Verdicts[0].Fixed)
	assert.False(t, decision.Verdicts[1].IsAvailable)
	assert.Equal(t, domain.ReasonBusy, decision.Verdicts[1].Reason)
}

func TestEnsureAvailableUsers_AllRoundRobinBusy(t *testing.T) {
	svc := newTestService(busyFor(map[string][]window.TimeWindow{
		"rr-1": {slot(10, 0, 11, 0)},
		"rr-2": {slot(10, 30, 11, 30)},
	}), nil, nil)

	_, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{roundRobin("rr-1"), roundRobin("rr-2")},
	)

	var noUsers *availerrors.NoAvailableUsersError
	require.ErrorAs(t, err, &noUsers)
	assert.Empty(t, noUsers.UnavailableFixed)
	assert.Equal(t, 2, noUsers.Rejected)
}

func TestEnsureAvailableUsers_OnlyFixedUnavailableAlwaysFails(t *testing.T) {
	svc := newTestService(busyFor(map[string][]window.TimeWindow{
		"owner": {slot(10, 0, 11, 0)},
	}), nil, nil)

	_, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner"), roundRobin("rr-1"), roundRobin("rr-2"), roundRobin("rr-3")},
	)

	var noUsers *availerrors.NoAvailableUsersError
	require.ErrorAs(t, err, &noUsers)
	assert.Equal(t, []string{"owner"}, noUsers.UnavailableFixed)
}

func TestEnsureAvailableUsers_RoundRobinOnly(t *testing.T) {
	svc := newTestService(busyFor(map[string][]window.TimeWindow{
		"rr-2": {slot(10, 0, 11, 0)},
	}), nil, nil)

	available, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{roundRobin("rr-1"), roundRobin("rr-2"), roundRobin("rr-3")},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"rr-1", "rr-3"}, ids(available))
}

func TestEnsureAvailableUsers_NoCandidates(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	_, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		nil,
	)

	var noUsers *availerrors.NoAvailableUsersError
	assert.ErrorAs(t, err, &noUsers)
}

func TestEnsureAvailableUsers_SeatsOverrideBusy(t *testing.T) {
	requested := slot(10, 0, 11, 0)
	seats := 2

	for _, tt := range []struct {
		attendees int
		wantOK    bool
	}{
		{attendees: 1, wantOK: true},
		{attendees: 2, wantOK: false},
	} {
		provider := &stubAvailabilityProvider{
			getUsersAvailabilityFunc: func(_ context.Context, users []domain.CandidateUser, _ window.TimeWindow, _ *domain.EventTypeConfig) ([]domain.UserAvailability, error) {
				a := workday(users[0].ID)
				a.BusyIntervals = []window.TimeWindow{requested}
				a.CurrentSeatBookings = []domain.SeatBooking{{BookingID: "seated", Start: requested.Start(), AttendeeCount: tt.attendees}}
				return []domain.UserAvailability{a}, nil
			},
		}
		svc := newTestService(provider, nil, nil)

		decision, err := svc.Decide(context.Background(),
			&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, SeatsPerTimeSlot: &seats},
			requested,
			[]domain.CandidateUser{fixed("owner")},
		)

		if tt.wantOK {
			require.NoError(t, err)
			require.NotNil(t, decision.Verdicts[0].MatchedSeatBooking)
			assert.Equal(t, "seated", decision.Verdicts[0].MatchedSeatBooking.BookingID)
			continue
		}
		require.Error(t, err)
		assert.Equal(t, domain.ReasonSeatsFull, decision.Verdicts[0].Reason)
	}
}

func TestEnsureAvailableUsers_MultiDayStartOnlyCoverage(t *testing.T) {
	provider := &stubAvailabilityProvider{
		getUsersAvailabilityFunc: func(_ context.Context, users []domain.CandidateUser, _ window.TimeWindow, _ *domain.EventTypeConfig) ([]domain.UserAvailability, error) {
			return []domain.UserAvailability{{
				UserID:               users[0].ID,
				TimeZone:             "UTC",
				WorkingHourIntervals: []window.TimeWindow{slot(9, 0, 10, 0)},
			}}, nil
		},
	}
	svc := newTestService(provider, nil, nil)
	twoDays := window.MustNew(at(9, 0), at(9, 0).Add(48*time.Hour), "UTC")

	available, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, MultiDayEnabled: true},
		twoDays,
		[]domain.CandidateUser{fixed("owner")},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, ids(available))
}

func TestEnsureAvailableUsers_BuffersWidenBusyCheckOnly(t *testing.T) {
	var fetched window.TimeWindow
	provider := &stubAvailabilityProvider{
		getUsersAvailabilityFunc: func(_ context.Context, users []domain.CandidateUser, w window.TimeWindow, _ *domain.EventTypeConfig) ([]domain.UserAvailability, error) {
			fetched = w
			a := workday(users[0].ID)
			a.BusyIntervals = []window.TimeWindow{slot(11, 0, 12, 0)}
			return []domain.UserAvailability{a}, nil
		},
	}
	svc := newTestService(provider, nil, nil)

	_, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, AfterBufferMinutes: 15},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner")},
	)

	var noUsers *availerrors.NoAvailableUsersError
	require.ErrorAs(t, err, &noUsers)
	assert.True(t, fetched.Equal(slot(10, 0, 11, 15)))
}

func TestEnsureAvailableUsers_UpstreamFailureIsNotSwallowed(t *testing.T) {
	provider := &stubAvailabilityProvider{
		getUsersAvailabilityFunc: func(context.Context, []domain.CandidateUser, window.TimeWindow, *domain.EventTypeConfig) ([]domain.UserAvailability, error) {
			return nil, errors.New("calendar service timeout")
		},
	}
	svc := newTestService(provider, nil, nil)

	decision, err := svc.Decide(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner")},
	)

	var upstream *availerrors.UpstreamFetchError
	require.ErrorAs(t, err, &upstream)
	assert.Nil(t, decision)
	assert.Equal(t, 1, provider.calls)
}

func TestEnsureAvailableUsers_ProviderReturnsWrongCount(t *testing.T) {
	provider := &stubAvailabilityProvider{
		getUsersAvailabilityFunc: func(context.Context, []domain.CandidateUser, window.TimeWindow, *domain.EventTypeConfig) ([]domain.UserAvailability, error) {
			return nil, nil
		},
	}
	svc := newTestService(provider, nil, nil)

	_, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner")},
	)

	var upstream *availerrors.UpstreamFetchError
	assert.ErrorAs(t, err, &upstream)
}

func TestEnsureAvailableUsers_EventTypeBookingLimitRejectsEveryone(t *testing.T) {
	provider := &stubAvailabilityProvider{}
	busyTimes := &stubBusyTimesProvider{
		busyFunc: func(_ context.Context, user *domain.CandidateUser, _ *domain.EventTypeConfig, _ window.TimeWindow) ([]window.TimeWindow, error) {
			assert.Nil(t, user)
			return []window.TimeWindow{slot(14, 0, 15, 0)}, nil
		},
	}
	svc := newTestService(provider, busyTimes, nil)

	decision, err := svc.Decide(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, BookingLimits: &domain.LimitPolicy{Scope: domain.ScopeEventType, PerDay: 1}},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner"), roundRobin("rr")},
	)

	require.Error(t, err)
	assert.Equal(t, 1, busyTimes.calls)
	assert.Zero(t, provider.calls, "no per-user fetch once every user is rejected")
	for _, v := range decision.Verdicts {
		assert.Equal(t, domain.ReasonBookingLimit, v.Reason)
	}
}

func TestEnsureAvailableUsers_UserDurationLimitFiltersRoundRobin(t *testing.T) {
	busyTimes := &stubBusyTimesProvider{
		busyFunc: func(_ context.Context, user *domain.CandidateUser, _ *domain.EventTypeConfig, _ window.TimeWindow) ([]window.TimeWindow, error) {
			require.NotNil(t, user)
			if user.ID == "rr-busy" {
				return []window.TimeWindow{slot(13, 0, 16, 0)}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(nil, busyTimes, nil)

	decision, err := svc.Decide(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, DurationLimits: &domain.LimitPolicy{Scope: domain.ScopeUser, PerDay: 180}},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{roundRobin("rr-busy"), roundRobin("rr-free")},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"rr-free"}, ids(decision.Available))
	assert.Equal(t, domain.ReasonDurationLimit, decision.Verdicts[0].Reason)
	assert.Equal(t, 2, busyTimes.calls)
}

func TestEnsureAvailableUsers_LimitFetchFailureAborts(t *testing.T) {
	busyTimes := &stubBusyTimesProvider{
		busyFunc: func(context.Context, *domain.CandidateUser, *domain.EventTypeConfig, window.TimeWindow) ([]window.TimeWindow, error) {
			return nil, errors.New("bookings unavailable")
		},
	}
	svc := newTestService(nil, busyTimes, nil)

	_, err := svc.EnsureAvailableUsers(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, BookingLimits: &domain.LimitPolicy{Scope: domain.ScopeUser, PerWeek: 3}},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner")},
	)

	var upstream *availerrors.UpstreamFetchError
	assert.ErrorAs(t, err, &upstream)
}

func TestEnsureAvailableUsers_RestrictionSchedule(t *testing.T) {
	scheduleID := "restriction-1"
	restrictions := &stubRestrictionProvider{
		rangesFunc: func(_ context.Context, id string, _ window.TimeWindow) ([]window.TimeWindow, error) {
			assert.Equal(t, scheduleID, id)
			return []window.TimeWindow{slot(12, 0, 14, 0)}, nil
		},
	}
	svc := newTestService(nil, nil, restrictions)
	eventType := &domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, RestrictionScheduleID: &scheduleID}

	available, err := svc.EnsureAvailableUsers(context.Background(), eventType, slot(12, 30, 13, 30), []domain.CandidateUser{fixed("owner")})
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, ids(available))

	decision, err := svc.Decide(context.Background(), eventType, slot(10, 0, 11, 0), []domain.CandidateUser{fixed("owner")})
	require.Error(t, err)
	assert.Equal(t, domain.ReasonRestricted, decision.Verdicts[0].Reason)
}

func TestEnsureAvailableUsers_RecurringOccurrencesAllChecked(t *testing.T) {
	// The third weekly occurrence collides with an existing booking.
	third := window.MustNew(at(10, 0).AddDate(0, 0, 14), at(11, 0).AddDate(0, 0, 14), "UTC")
	provider := &stubAvailabilityProvider{
		getUsersAvailabilityFunc: func(_ context.Context, users []domain.CandidateUser, w window.TimeWindow, _ *domain.EventTypeConfig) ([]domain.UserAvailability, error) {
			assert.True(t, window.Contains(w, third), "fetch window must cover the whole series")
			a := domain.UserAvailability{UserID: users[0].ID, TimeZone: "UTC"}
			for d := 0; d < 30; d++ {
				day := monday.AddDate(0, 0, d)
				a.WorkingHourIntervals = append(a.WorkingHourIntervals, window.MustNew(day.Add(9*time.Hour), day.Add(17*time.Hour), "UTC"))
			}
			a.BusyIntervals = []window.TimeWindow{third}
			return []domain.UserAvailability{a}, nil
		},
	}
	svc := newTestService(provider, nil, nil)

	decision, err := svc.Decide(context.Background(),
		&domain.EventTypeConfig{ID: "evt", BaseDurationMinutes: 60, Recurring: &domain.RecurringRule{Frequency: domain.Weekly, Count: 4}},
		slot(10, 0, 11, 0),
		[]domain.CandidateUser{fixed("owner")},
	)

	require.Error(t, err)
	assert.Equal(t, domain.ReasonBusy, decision.Verdicts[0].Reason)
}

func TestDecide_RecordsDecisionMetadata(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	decision, err := svc.Decide(context.Background(),
		&domain.EventTypeConfig{ID: "evt-42", BaseDurationMinutes: 30},
		slot(10, 0, 10, 30),
		[]domain.CandidateUser{fixed("owner")},
	)

	require.NoError(t, err)
	assert.Equal(t, "decision-1", decision.ID)
	assert.Equal(t, "evt-42", decision.EventTypeID)
	assert.True(t, decision.Accepted())
	assert.True(t, decision.Window.Equal(slot(10, 0, 10, 30)))
}
