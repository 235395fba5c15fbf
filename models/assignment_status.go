package models

type AssignmentStatus string

const (
	StatusPendingOffer   AssignmentStatus = "PENDING_OFFER"
	StatusTutorAccepted  AssignmentStatus = "TUTOR_ACCEPTED"
	StatusTutorDeclined  AssignmentStatus = "TUTOR_DECLINED"
	StatusPaymentPending AssignmentStatus = "PAYMENT_PENDING"
	StatusInProgress     AssignmentStatus = "IN_PROGRESS"
	StatusCompleted      AssignmentStatus = "COMPLETED"
	StatusCanceled       AssignmentStatus = "CANCELED"
)

// AssignmentStatuses lists every status in workflow order.
var AssignmentStatuses = []AssignmentStatus{
	StatusPendingOffer,
	StatusTutorAccepted,
	StatusTutorDeclined,
	StatusPaymentPending,
	StatusInProgress,
	StatusCompleted,
	StatusCanceled,
}

// Terminal statuses have no outgoing edges.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	StatusPendingOffer:   {StatusTutorAccepted, StatusTutorDeclined, StatusCanceled},
	StatusTutorAccepted:  {StatusPaymentPending, StatusCanceled},
	StatusPaymentPending: {StatusInProgress, StatusCanceled},
	StatusInProgress:     {StatusCompleted, StatusCanceled},
}

func (s AssignmentStatus) Valid() bool {
	for _, known := range AssignmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s AssignmentStatus) IsTerminal() bool {
	return s.Valid() && len(assignmentTransitions[s]) == 0
}

func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AssignmentStatus) String() string {
	return string(s)
}
