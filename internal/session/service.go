package session

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/nekogravitycat/coaching-backend/internal/availability"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
	"github.com/nekogravitycat/coaching-backend/internal/user"
)

// AvailabilityChecker answers whether a coach accepts a session starting at t.
type AvailabilityChecker interface {
	CheckAvailable(ctx context.Context, coachID string, t time.Time) error
}

// UserDirectory resolves session participants.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Recorder receives booking outcomes, typically for metrics.
type Recorder interface {
	SessionBooked()
	SessionCanceled()
	SessionRescheduled()
	BookingRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) SessionBooked()         {}
func (nopRecorder) SessionCanceled()       {}
func (nopRecorder) SessionRescheduled()    {}
func (nopRecorder) BookingRejected(string) {}

// Options tunes lifecycle policy.
type Options struct {
	// RequireFutureStart rejects creating or moving a session to a start that
	// is not strictly after now.
	RequireFutureStart bool
	Recorder           Recorder
}

type CreateRequest struct {
	CoachID  string
	ClientID string
	Date     time.Time
	Duration int // minutes; zero means DefaultDuration
	Notes    string
}

type CancelRequest struct {
	CanceledBy string // defaults to the acting user
	Reason     string
}

type RescheduleRequest struct {
	Date time.Time
}

// SlotCheck is the verdict for a candidate slot.
type SlotCheck struct {
	Available bool
	Reason    string
	Conflict  *Session
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Session, error)
	Cancel(ctx context.Context, id string, req CancelRequest, actorID string, isSysAdmin bool) (*Session, error)
	Reschedule(ctx context.Context, id string, req RescheduleRequest, actorID string, isSysAdmin bool) (*Session, error)
	GetByID(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context, filter Filter) ([]*Session, int, error)
	CheckSlot(ctx context.Context, coachID string, start time.Time, minutes int) (*SlotCheck, error)
}

type service struct {
	repo         Repository
	availability AvailabilityChecker
	users        UserDirectory
	clock        clock.Clock
	opts         Options
}

func NewService(repo Repository, availability AvailabilityChecker, users UserDirectory, clk clock.Clock, opts Options) Service {
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &service{
		repo:         repo,
		availability: availability,
		users:        users,
		clock:        clk,
		opts:         opts,
	}
}

func normalizeDuration(minutes int) (int, error) {
	if minutes == 0 {
		return DefaultDuration, nil
	}
	if minutes < MinDuration || minutes > MaxDuration {
		return 0, ErrInvalidDuration
	}
	return minutes, nil
}

func (s *service) checkStart(start time.Time) error {
	if start.IsZero() {
		return ErrDateRequired
	}
	if s.opts.RequireFutureStart && !start.After(s.clock.Now()) {
		return ErrStartTimePast
	}
	return nil
}

func (s *service) validateParticipants(ctx context.Context, coachID, clientID string) error {
	coach, err := s.users.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrCoachNotFound
		}
		return err
	}
	if !coach.IsCoach() || !coach.IsActive {
		return ErrNotACoach
	}

	client, err := s.users.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	if !client.IsActive {
		return ErrClientNotFound
	}
	return nil
}

// reject logs and counts a refused booking before handing the error back.
func (s *service) reject(ctx context.Context, op, coachID string, err error) error {
	reason := "error"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		reason = string(appErr.Kind)
	}
	s.opts.Recorder.BookingRejected(reason)
	slog.InfoContext(ctx, "session request rejected",
		slog.String("op", op),
		slog.String("coach_id", coachID),
		slog.String("reason", err.Error()),
	)
	return err
}

// admit runs the availability and conflict checks against repo.
func (s *service) admit(ctx context.Context, repo Repository, coachID string, start time.Time, minutes int, excludeID string) error {
	if err := s.availability.CheckAvailable(ctx, coachID, start); err != nil {
		return err
	}
	conflict, err := NewConflictChecker(repo).HasConflict(ctx, coachID, start, minutes, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return ErrTimeConflict
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	switch {
	case req.CoachID == "":
		return nil, ErrCoachRequired
	case req.ClientID == "":
		return nil, ErrClientRequired
	case req.CoachID == req.ClientID:
		return nil, ErrSameParticipant
	}

	minutes, err := normalizeDuration(req.Duration)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(req.Notes) > MaxNotesLength {
		return nil, ErrNotesTooLong
	}
	if err := s.checkStart(req.Date); err != nil {
		return nil, err
	}
	if err := s.validateParticipants(ctx, req.CoachID, req.ClientID); err != nil {
		return nil, err
	}

	created := &Session{
		CoachID:  req.CoachID,
		ClientID: req.ClientID,
		Date:     req.Date.UTC(),
		Duration: minutes,
		Status:   StatusScheduled,
		Notes:    req.Notes,
	}

	err = s.repo.WithCoachLock(ctx, req.CoachID, func(repo Repository) error {
		if err := s.admit(ctx, repo, created.CoachID, created.Date, created.Duration, ""); err != nil {
			return err
		}
		return repo.Create(ctx, created)
	})
	if err != nil {
		return nil, s.reject(ctx, "create", req.CoachID, err)
	}

	s.opts.Recorder.SessionBooked()
	slog.InfoContext(ctx, "session booked",
		slog.String("session_id", created.ID),
		slog.String("coach_id", created.CoachID),
		slog.Time("date", created.Date),
	)
	return created, nil
}

func (s *service) authorize(sess *Session, actorID string, isSysAdmin bool) error {
	if isSysAdmin || sess.HasParticipant(actorID) {
		return nil
	}
	return ErrPermissionDenied
}

// applyCancel returns the canceled snapshot of current.
func applyCancel(current Session, canceledBy, reason string) (Session, error) {
	if current.Status == StatusCompleted {
		return current, ErrInvalidTransition
	}
	next := current
	next.Status = StatusCanceled
	next.CanceledBy = nil
	if canceledBy != "" {
		next.CanceledBy = &canceledBy
	}
	next.CancelReason = nil
	if reason != "" {
		next.CancelReason = &reason
	}
	return next, nil
}

// applyReschedule returns the snapshot of current moved to newStart.
func applyReschedule(current Session, newStart, now time.Time) (Session, error) {
	if current.Status == StatusCompleted {
		return current, ErrInvalidTransition
	}
	previous := current.Date
	next := current
	next.PreviousDate = &previous
	next.Date = newStart
	next.Status = StatusScheduled
	next.RescheduledAt = &now
	return next, nil
}

func (s *service) Cancel(ctx context.Context, id string, req CancelRequest, actorID string, isSysAdmin bool) (*Session, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(current, actorID, isSysAdmin); err != nil {
		return nil, err
	}

	canceledBy := req.CanceledBy
	if canceledBy == "" {
		canceledBy = actorID
	}
	if canceledBy != actorID {
		if _, err := s.users.GetByID(ctx, canceledBy); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return nil, ErrCancelerNotFound
			}
			return nil, err
		}
	}

	next, err := applyCancel(*current, canceledBy, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, err
	}

	s.opts.Recorder.SessionCanceled()
	return &next, nil
}

func (s *service) Reschedule(ctx context.Context, id string, req RescheduleRequest, actorID string, isSysAdmin bool) (*Session, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(current, actorID, isSysAdmin); err != nil {
		return nil, err
	}
	if err := s.checkStart(req.Date); err != nil {
		return nil, err
	}

	var next Session
	err = s.repo.WithCoachLock(ctx, current.CoachID, func(repo Repository) error {
		// Re-read under the lock so the transition applies to committed state.
		locked, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err = applyReschedule(*locked, req.Date.UTC(), s.clock.Now())
		if err != nil {
			return err
		}
		if err := s.admit(ctx, repo, next.CoachID, next.Date, next.Duration, next.ID); err != nil {
			return err
		}
		return repo.Update(ctx, &next)
	})
	if err != nil {
		return nil, s.reject(ctx, "reschedule", current.CoachID, err)
	}

	s.opts.Recorder.SessionRescheduled()
	return &next, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Session, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Session, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// CheckSlot evaluates a candidate slot without writing or locking.
func (s *service) CheckSlot(ctx context.Context, coachID string, start time.Time, minutes int) (*SlotCheck, error) {
	if coachID == "" {
		return nil, ErrCoachRequired
	}
	if start.IsZero() {
		return nil, ErrDateRequired
	}
	minutes, err := normalizeDuration(minutes)
	if err != nil {
		return nil, err
	}

	if err := s.availability.CheckAvailable(ctx, coachID, start); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Kind == apperror.KindUnavailable {
			return &SlotCheck{Available: false, Reason: appErr.Message}, nil
		}
		return nil, err
	}

	conflict, err := NewConflictChecker(s.repo).FindConflict(ctx, coachID, start, minutes, "")
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return &SlotCheck{Available: false, Reason: ErrTimeConflict.Message, Conflict: conflict}, nil
	}

	return &SlotCheck{Available: true}, nil
}

var _ AvailabilityChecker = (availability.Service)(nil)
