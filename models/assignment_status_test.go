package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentStatus_Transitions(t *testing.T) {
	allowed := map[AssignmentStatus][]AssignmentStatus{
		StatusPendingOffer:   {StatusTutorAccepted, StatusTutorDeclined, StatusCanceled},
		StatusTutorAccepted:  {StatusPaymentPending, StatusCanceled},
		StatusPaymentPending: {StatusInProgress, StatusCanceled},
		StatusInProgress:     {StatusCompleted, StatusCanceled},
	}

	for _, from := range AssignmentStatuses {
		for _, to := range AssignmentStatuses {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestAssignmentStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.True(t, StatusTutorDeclined.IsTerminal())

	assert.False(t, StatusPendingOffer.IsTerminal())
	assert.False(t, StatusPaymentPending.IsTerminal())
	assert.False(t, AssignmentStatus("BOGUS").IsTerminal())
	assert.False(t, AssignmentStatus("BOGUS").Valid())
}
