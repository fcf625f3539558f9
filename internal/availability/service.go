package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
	"github.com/nekogravitycat/coaching-backend/internal/user"
)

// CoachDirectory resolves users so that availability is only attached to coaches.
type CoachDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// SetRequest creates or updates a coach's availability. Nil fields keep the
// stored value on update.
type SetRequest struct {
	CoachID          string
	UnavailableDates []time.Time
	WorkingHours     WorkingHours
	TimeZone         *string
	UseDefaultHours  bool
}

// Service manages coach availability and answers "can this coach take a
// session starting at t?".
type Service interface {
	Set(ctx context.Context, req SetRequest) (a *Availability, created bool, err error)
	Get(ctx context.Context, coachID string) (*Availability, error)
	AddUnavailableDates(ctx context.Context, coachID string, dates []time.Time) (*Availability, error)
	RemoveUnavailableDate(ctx context.Context, coachID string, date time.Time) (*Availability, error)
	IsAvailable(ctx context.Context, coachID string, t time.Time) (bool, error)
	CheckAvailable(ctx context.Context, coachID string, t time.Time) error
}

type service struct {
	repo    Repository
	coaches CoachDirectory
	clock   clock.Clock
}

func NewService(repo Repository, coaches CoachDirectory, clk clock.Clock) Service {
	return &service{
		repo:    repo,
		coaches: coaches,
		clock:   clk,
	}
}

func (s *service) ensureCoach(ctx context.Context, coachID string) error {
	u, err := s.coaches.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrCoachNotFound
		}
		return err
	}
	if !u.IsCoach() {
		return ErrNotACoach
	}
	return nil
}

// validateDates rejects dates before today in loc and normalizes the rest.
func (s *service) validateDates(dates []time.Time, loc *time.Location) ([]time.Time, error) {
	today := DateOf(s.clock.Now().In(loc))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := DateOf(d)
		if day.Before(today) {
			return nil, ErrPastDate
		}
		out = append(out, day)
	}
	return out, nil
}

func (s *service) Set(ctx context.Context, req SetRequest) (*Availability, bool, error) {
	if err := s.ensureCoach(ctx, req.CoachID); err != nil {
		return nil, false, err
	}

	var a *Availability
	var created bool
	err := s.repo.WithCoachLock(ctx, req.CoachID, func(repo Repository) error {
		current, err := loadOrNew(ctx, repo, req.CoachID)
		if err != nil {
			return err
		}

		if req.TimeZone != nil {
			tz := *req.TimeZone
			if tz == "" {
				tz = DefaultTimeZone
			}
			if _, err := time.LoadLocation(tz); err != nil {
				return ErrInvalidTimeZone
			}
			current.TimeZone = tz
		}

		switch {
		case req.WorkingHours != nil:
			hours := req.WorkingHours.WithDefaults()
			if err := hours.Validate(); err != nil {
				return err
			}
			current.WorkingHours = hours
		case req.UseDefaultHours:
			current.WorkingHours = DefaultWorkingHours()
		}

		if req.UnavailableDates != nil {
			dates, err := s.validateDates(req.UnavailableDates, current.Location())
			if err != nil {
				return err
			}
			current.UnavailableDates = dedupeDates(dates)
		}

		created, err = repo.Upsert(ctx, current)
		if err != nil {
			return err
		}
		a = current
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return a, created, nil
}

// loadOrNew returns the stored record or a blank one in UTC.
func loadOrNew(ctx context.Context, repo Repository, coachID string) (*Availability, error) {
	a, err := repo.GetByCoachID(ctx, coachID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &Availability{
		CoachID:          coachID,
		UnavailableDates: []time.Time{},
		WorkingHours:     WorkingHours{},
		TimeZone:         DefaultTimeZone,
	}, nil
}

func (s *service) Get(ctx context.Context, coachID string) (*Availability, error) {
	return s.repo.GetByCoachID(ctx, coachID)
}

func (s *service) AddUnavailableDates(ctx context.Context, coachID string, dates []time.Time) (*Availability, error) {
	if err := s.ensureCoach(ctx, coachID); err != nil {
		return nil, err
	}

	var a *Availability
	err := s.repo.WithCoachLock(ctx, coachID, func(repo Repository) error {
		current, err := loadOrNew(ctx, repo, coachID)
		if err != nil {
			return err
		}

		added, err := s.validateDates(dates, current.Location())
		if err != nil {
			return err
		}
		current.UnavailableDates = dedupeDates(append(current.UnavailableDates, added...))

		if _, err := repo.Upsert(ctx, current); err != nil {
			return err
		}
		a = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) RemoveUnavailableDate(ctx context.Context, coachID string, date time.Time) (*Availability, error) {
	if date.IsZero() {
		return nil, ErrDateRequired
	}

	var a *Availability
	err := s.repo.WithCoachLock(ctx, coachID, func(repo Repository) error {
		current, err := repo.GetByCoachID(ctx, coachID)
		if err != nil {
			return err
		}

		kept := make([]time.Time, 0, len(current.UnavailableDates))
		for _, d := range current.UnavailableDates {
			if !sameDate(d, date) {
				kept = append(kept, d)
			}
		}
		current.UnavailableDates = kept

		if _, err := repo.Upsert(ctx, current); err != nil {
			return err
		}
		a = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) IsAvailable(ctx context.Context, coachID string, t time.Time) (bool, error) {
	err := s.CheckAvailable(ctx, coachID, t)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrUnavailableDate) || errors.Is(err, ErrNotWorkingDay) || errors.Is(err, ErrOutsideWorkingHours) {
		return false, nil
	}
	return false, err
}

// CheckAvailable loads the coach's record on every call; a coach without a
// record is always available.
func (s *service) CheckAvailable(ctx context.Context, coachID string, t time.Time) error {
	a, err := s.repo.GetByCoachID(ctx, coachID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return a.Check(t)
}

func dedupeDates(dates []time.Time) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if !containsDate(out, d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
