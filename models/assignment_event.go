package models

import "github.com/google/uuid"

type EventParty struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// AssignmentEvent is published after every committed status change.
type AssignmentEvent struct {
	AssignmentID uuid.UUID        `json:"assignment_id"`
	Subject      string           `json:"subject"`
	Status       AssignmentStatus `json:"status"`
	Reason       string           `json:"reason,omitempty"`
	Student      EventParty       `json:"student"`
	Tutor        EventParty       `json:"tutor"`
}

// NewAssignmentEvent builds an event from an assignment with its profiles
// and their users preloaded. Missing associations leave parties empty.
func NewAssignmentEvent(a *Assignment) AssignmentEvent {
	ev := AssignmentEvent{
		AssignmentID: a.ID,
		Subject:      a.Subject,
		Status:       a.Status,
	}
	if a.StatusReason != nil {
		ev.Reason = *a.StatusReason
	}
	if a.Student != nil {
		ev.Student = EventParty{UserID: a.Student.UserID, Name: a.Student.Name}
		if a.Student.User != nil {
			ev.Student.Email = a.Student.User.Email
		}
	}
	if a.Tutor != nil {
		ev.Tutor = EventParty{UserID: a.Tutor.UserID, Name: a.Tutor.Name}
		if a.Tutor.User != nil {
			ev.Tutor.Email = a.Tutor.User.Email
		}
	}
	return ev
}
