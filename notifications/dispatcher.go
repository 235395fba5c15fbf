package notifications

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher pushes a message to every live connection of a user.
type Publisher interface {
	Publish(userID uuid.UUID, message any)
}

// Dispatcher fans assignment events out to the live hub and to email.
// Email goes out in the background so a slow provider never holds up a
// request.
type Dispatcher struct {
	mailer  Mailer
	hub     Publisher
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher accepts a nil mailer or hub and skips that channel.
func NewDispatcher(mailer Mailer, hub Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:  mailer,
		hub:     hub,
		log:     log.Named("notify"),
		timeout: 15 * time.Second,
	}
}

type liveMessage struct {
	Type  string                 `json:"type"`
	Event models.AssignmentEvent `json:"event"`
}

func (d *Dispatcher) AssignmentChanged(_ context.Context, ev models.AssignmentEvent) {
	if d.hub != nil {
		msg := liveMessage{Type: "assignment.status", Event: ev}
		for _, party := range []models.EventParty{ev.Student, ev.Tutor} {
			if party.UserID != uuid.Nil {
				d.hub.Publish(party.UserID, msg)
			}
		}
	}

	if d.mailer == nil {
		return
	}
	for _, m := range emailsFor(ev) {
		d.wg.Add(1)
		go func(m email) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := d.mailer.Send(ctx, m.to.Email, m.to.Name, m.subject, m.body); err != nil {
				d.log.Warn("email not sent",
					zap.Stringer("assignment_id", ev.AssignmentID),
					zap.String("to", m.to.Email),
					zap.Error(err))
			}
		}(m)
	}
}

// Wait blocks until in-flight emails have been attempted.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

type email struct {
	to      models.EventParty
	subject string
	body    string
}

func emailsFor(ev models.AssignmentEvent) []email {
	subject := html.EscapeString(ev.Subject)
	var out []email
	add := func(to models.EventParty, title, text string) {
		if to.Email == "" {
			return
		}
		body := fmt.Sprintf("<h1>%s</h1><p>Hi %s,</p><p>%s</p>", title, html.EscapeString(to.Name), text)
		out = append(out, email{to: to, subject: title, body: body})
	}

	switch ev.Status {
	case models.StatusPendingOffer:
		add(ev.Tutor, "New tutoring offer", fmt.Sprintf("You have a new offer to tutor <b>%s</b>. Log in to accept or decline it.", subject))
	case models.StatusTutorAccepted:
		add(ev.Student, "Your tutor accepted", fmt.Sprintf("Your tutor accepted the <b>%s</b> assignment. Complete payment to get started.", subject))
	case models.StatusTutorDeclined:
		add(ev.Student, "Tutor unavailable", fmt.Sprintf("The tutor declined the <b>%s</b> assignment. We will find you another match.", subject))
	case models.StatusInProgress:
		add(ev.Student, "Payment received", fmt.Sprintf("Your payment for <b>%s</b> was received. Your sessions can begin.", subject))
		add(ev.Tutor, "Assignment started", fmt.Sprintf("Payment for <b>%s</b> is confirmed. You can begin tutoring.", subject))
	case models.StatusCompleted:
		add(ev.Student, "Assignment completed", fmt.Sprintf("The <b>%s</b> assignment is complete. Thank you for learning with us.", subject))
		add(ev.Tutor, "Assignment completed", fmt.Sprintf("The <b>%s</b> assignment is complete and your payout has been initiated.", subject))
	case models.StatusCanceled:
		text := fmt.Sprintf("The <b>%s</b> assignment was canceled.", subject)
		if ev.Reason != "" {
			text += " Reason: " + html.EscapeString(ev.Reason)
		}
		add(ev.Student, "Assignment canceled", text)
		add(ev.Tutor, "Assignment canceled", text)
	}
	return out
}
