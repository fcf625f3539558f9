package session

import (
	"context"
	"time"
)

// Overlaps reports whether [aStart, aStart+aMinutes) and [bStart, bStart+bMinutes)
// intersect. Intervals that only touch at an endpoint do not overlap.
func Overlaps(aStart time.Time, aMinutes int, bStart time.Time, bMinutes int) bool {
	aEnd := aStart.Add(time.Duration(aMinutes) * time.Minute)
	bEnd := bStart.Add(time.Duration(bMinutes) * time.Minute)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ActiveSessionReader is the read side needed to look for conflicts.
type ActiveSessionReader interface {
	// ListActiveByCoach returns the coach's non-canceled sessions that start in [from, to).
	ListActiveByCoach(ctx context.Context, coachID string, from, to time.Time) ([]*Session, error)
}

// ConflictChecker finds sessions that would overlap a candidate slot.
type ConflictChecker struct {
	reader ActiveSessionReader
}

func NewConflictChecker(reader ActiveSessionReader) ConflictChecker {
	return ConflictChecker{reader: reader}
}

// FindConflict returns the first active session of the coach overlapping the
// candidate, ignoring excludeID. It returns nil when the slot is free.
func (c ConflictChecker) FindConflict(ctx context.Context, coachID string, start time.Time, minutes int, excludeID string) (*Session, error) {
	// No session is longer than MaxDuration, so anything starting earlier than
	// this ends at or before start.
	from := start.Add(-MaxDuration * time.Minute)
	to := start.Add(time.Duration(minutes) * time.Minute)

	existing, err := c.reader.ListActiveByCoach(ctx, coachID, from, to)
	if err != nil {
		return nil, err
	}

	for _, s := range existing {
		if s.ID == excludeID || !s.Active() {
			continue
		}
		if Overlaps(s.Date, s.Duration, start, minutes) {
			return s, nil
		}
	}
	return nil, nil
}

// HasConflict is the boolean form of FindConflict.
func (c ConflictChecker) HasConflict(ctx context.Context, coachID string, start time.Time, minutes int, excludeID string) (bool, error) {
	s, err := c.FindConflict(ctx, coachID, start, minutes, excludeID)
	return s != nil, err
}
