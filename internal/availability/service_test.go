package availability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
	"github.com/nekogravitycat/coaching-backend/internal/user"
)

type memRepository struct {
	mu      sync.Mutex
	edit    sync.Mutex
	byCoach map[string]Availability
}

func newMemRepository() *memRepository {
	return &memRepository{byCoach: map[string]Availability{}}
}

func (r *memRepository) GetByCoachID(_ context.Context, coachID string) (*Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byCoach[coachID]
	if !ok {
		return nil, ErrNotFound
	}
	a.UnavailableDates = append([]time.Time(nil), a.UnavailableDates...)
	return &a, nil
}

func (r *memRepository) Upsert(_ context.Context, a *Availability) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.byCoach[a.CoachID]
	if !exists {
		a.ID = uuid.NewString()
	}
	r.byCoach[a.CoachID] = *a
	return !exists, nil
}

func (r *memRepository) WithCoachLock(_ context.Context, _ string, fn func(repo Repository) error) error {
	r.edit.Lock()
	defer r.edit.Unlock()
	return fn(r)
}

type stubDirectory map[string]*user.User

func (d stubDirectory) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := d[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

const (
	coachID  = "11111111-1111-1111-1111-111111111111"
	clientID = "22222222-2222-2222-2222-222222222222"
)

func newTestService(now time.Time) (Service, *memRepository) {
	repo := newMemRepository()
	dir := stubDirectory{
		coachID:  {ID: coachID, Name: "Coach", Role: user.RoleCoach},
		clientID: {ID: clientID, Name: "Client", Role: user.RoleClient},
	}
	return NewService(repo, dir, clock.NewFixed(now)), repo
}

func TestSetCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(utc(2025, 6, 1, 8, 0))

	a, created, err := svc.Set(ctx, SetRequest{
		CoachID:          coachID,
		UnavailableDates: []time.Time{utc(2025, 6, 10, 0, 0), utc(2025, 6, 10, 0, 0)},
		UseDefaultHours:  true,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultTimeZone, a.TimeZone)
	assert.Len(t, a.UnavailableDates, 1, "duplicates collapse")
	assert.Len(t, a.WorkingHours, 7)

	tz := "Europe/Paris"
	a, created, err = svc.Set(ctx, SetRequest{CoachID: coachID, TimeZone: &tz})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Europe/Paris", a.TimeZone)
	assert.Len(t, a.UnavailableDates, 1, "omitted dates are kept")
	assert.Len(t, a.WorkingHours, 7, "omitted hours are kept")

	a, _, err = svc.Set(ctx, SetRequest{CoachID: coachID, UnavailableDates: []time.Time{}})
	require.NoError(t, err)
	assert.Empty(t, a.UnavailableDates, "an explicit empty list clears dates")
}

func TestSetValidation(t *testing.T) {
	ctx := context.Background()
	badZone := "Not/AZone"

	tests := []struct {
		name string
		req  SetRequest
		want error
	}{
		{"unknown user", SetRequest{CoachID: "33333333-3333-3333-3333-333333333333"}, ErrCoachNotFound},
		{"client cannot own availability", SetRequest{CoachID: clientID}, ErrNotACoach},
		{"past date", SetRequest{CoachID: coachID, UnavailableDates: []time.Time{utc(2025, 5, 31, 0, 0)}}, ErrPastDate},
		{"bad zone", SetRequest{CoachID: coachID, TimeZone: &badZone}, ErrInvalidTimeZone},
		{"bad hours", SetRequest{CoachID: coachID, WorkingHours: WorkingHours{Monday: {IsWorking: true, Start: "17:00", End: "09:00"}}}, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(utc(2025, 6, 1, 8, 0))
			_, _, err := svc.Set(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSetAcceptsDaysWithoutTimes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(utc(2025, 6, 1, 8, 0))

	a, _, err := svc.Set(ctx, SetRequest{
		CoachID: coachID,
		WorkingHours: WorkingHours{
			Monday:    {IsWorking: false},
			Tuesday:   {IsWorking: true, Start: "10:00", End: "12:00"},
			Wednesday: {IsWorking: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, DaySchedule{IsWorking: true, Start: "09:00", End: "17:00"}, a.WorkingHours[Wednesday])

	// June 9th 2025 is a Monday.
	assert.ErrorIs(t, a.Check(utc(2025, 6, 9, 10, 0)), ErrNotWorkingDay)
	assert.NoError(t, a.Check(utc(2025, 6, 11, 16, 30)))
	assert.ErrorIs(t, a.Check(utc(2025, 6, 10, 13, 0)), ErrOutsideWorkingHours)
}

func TestSetAcceptsTodayInCoachZone(t *testing.T) {
	ctx := context.Background()
	// 02:00 UTC on June 1st is still May 31st in Los Angeles.
	svc, _ := newTestService(utc(2025, 6, 1, 2, 0))
	tz := "America/Los_Angeles"

	_, _, err := svc.Set(ctx, SetRequest{
		CoachID:          coachID,
		TimeZone:         &tz,
		UnavailableDates: []time.Time{utc(2025, 5, 31, 0, 0)},
	})
	assert.NoError(t, err)

	_, _, err = svc.Set(ctx, SetRequest{
		CoachID:          coachID,
		UnavailableDates: []time.Time{utc(2025, 5, 30, 0, 0)},
	})
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestAddAndRemoveUnavailableDates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(utc(2025, 6, 1, 8, 0))

	a, err := svc.AddUnavailableDates(ctx, coachID, []time.Time{utc(2025, 6, 12, 0, 0), utc(2025, 6, 10, 0, 0)})
	require.NoError(t, err)
	require.Len(t, a.UnavailableDates, 2)
	assert.True(t, a.UnavailableDates[0].Before(a.UnavailableDates[1]), "dates are kept sorted")

	a, err = svc.AddUnavailableDates(ctx, coachID, []time.Time{utc(2025, 6, 10, 0, 0)})
	require.NoError(t, err)
	assert.Len(t, a.UnavailableDates, 2)

	a, err = svc.RemoveUnavailableDate(ctx, coachID, utc(2025, 6, 10, 0, 0))
	require.NoError(t, err)
	require.Len(t, a.UnavailableDates, 1)
	assert.Equal(t, utc(2025, 6, 12, 0, 0), a.UnavailableDates[0])

	_, err = svc.RemoveUnavailableDate(ctx, clientID, utc(2025, 6, 10, 0, 0))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.RemoveUnavailableDate(ctx, coachID, time.Time{})
	assert.ErrorIs(t, err, ErrDateRequired)
}

func TestConcurrentDateEditsKeepEveryDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(utc(2025, 6, 1, 8, 0))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := svc.AddUnavailableDates(ctx, coachID, []time.Time{utc(2025, 7, day, 0, 0)})
			assert.NoError(t, err)
		}(i + 1)
	}
	wg.Wait()

	a, err := svc.Get(ctx, coachID)
	require.NoError(t, err)
	assert.Len(t, a.UnavailableDates, n)
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(utc(2025, 6, 1, 8, 0))

	ok, err := svc.IsAvailable(ctx, coachID, utc(2025, 6, 14, 3, 0))
	require.NoError(t, err)
	assert.True(t, ok, "a coach without a record is always available")

	_, _, err = svc.Set(ctx, SetRequest{
		CoachID:          coachID,
		UnavailableDates: []time.Time{utc(2025, 6, 10, 0, 0)},
		UseDefaultHours:  true,
	})
	require.NoError(t, err)

	ok, err = svc.IsAvailable(ctx, coachID, utc(2025, 6, 10, 10, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsAvailable(ctx, coachID, utc(2025, 6, 11, 10, 0))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, svc.CheckAvailable(ctx, coachID, utc(2025, 6, 11, 18, 0)), ErrOutsideWorkingHours)
}
