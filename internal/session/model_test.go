package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionDerivedFields(t *testing.T) {
	now := at(9, 0)
	s := &Session{Date: at(10, 0), Duration: 45, Status: StatusScheduled}

	assert.Equal(t, at(10, 45), s.EndTime())
	assert.True(t, s.IsUpcoming(now))
	assert.True(t, s.CanBeCanceled(now))
	assert.False(t, s.IsUpcoming(at(10, 0)), "a session starting now is not upcoming")

	s.Status = StatusCanceled
	assert.False(t, s.CanBeCanceled(now))
	assert.False(t, s.Active())

	past := &Session{Date: now.Add(-time.Hour), Status: StatusScheduled}
	assert.False(t, past.CanBeCanceled(now))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusScheduled, StatusCompleted, StatusCanceled, StatusPending, StatusRescheduled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("archived").Valid())
}
