package session

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/coaching-backend/internal/availability"
	"github.com/nekogravitycat/coaching-backend/internal/user"
)

// memRepository keeps sessions in memory. WithCoachLock serializes callers
// the way the advisory lock does in Postgres.
type memRepository struct {
	mu       sync.Mutex
	coachMu  sync.Mutex
	sessions map[string]Session
}

func newMemRepository() *memRepository {
	return &memRepository{sessions: map[string]Session{}}
}

func (r *memRepository) Create(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	r.sessions[s.ID] = *s
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *memRepository) List(_ context.Context, filter Filter) ([]*Session, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Session
	for _, s := range r.sessions {
		if filter.CoachID != "" && s.CoachID != filter.CoachID {
			continue
		}
		if filter.ClientID != "" && s.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		cp := s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, len(out), nil
}

func (r *memRepository) Update(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memRepository) ListActiveByCoach(_ context.Context, coachID string, from, to time.Time) ([]*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Session
	for _, s := range r.sessions {
		if s.CoachID != coachID || s.Status == StatusCanceled {
			continue
		}
		if s.Date.Before(from) || !s.Date.Before(to) {
			continue
		}
		cp := s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRepository) WithCoachLock(_ context.Context, _ string, fn func(repo Repository) error) error {
	r.coachMu.Lock()
	defer r.coachMu.Unlock()
	return fn(r)
}

// calendars answers availability with the real engine over fixed records.
type calendars map[string]*availability.Availability

func (c calendars) CheckAvailable(_ context.Context, coachID string, t time.Time) error {
	a, ok := c[coachID]
	if !ok {
		return nil
	}
	return a.Check(t)
}

type stubUsers map[string]*user.User

func (d stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := d[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type countingRecorder struct {
	booked, canceled, rescheduled atomic.Int32
	mu                            sync.Mutex
	rejected                      map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{rejected: map[string]int{}}
}

func (r *countingRecorder) SessionBooked()      { r.booked.Add(1) }
func (r *countingRecorder) SessionCanceled()    { r.canceled.Add(1) }
func (r *countingRecorder) SessionRescheduled() { r.rescheduled.Add(1) }
func (r *countingRecorder) BookingRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[reason]++
}
