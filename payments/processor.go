// Package payments talks to the hosted payment processor. The rest of the
// service only sees the Processor interface and normalized Events.
package payments

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidSignature is returned by ParseEvent when a webhook payload was not
// signed with the configured secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type Processor interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseEvent(payload []byte, signature string) (*Event, error)
	// ExpireCheckout closes an unpaid checkout session so it can no longer
	// be paid.
	ExpireCheckout(ctx context.Context, sessionID string) error
}

type CheckoutRequest struct {
	AssignmentID uuid.UUID
	Subject      string
	Amount       float64
	Currency     string
	CustomerRef  string
}

type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

type EventKind string

const (
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
	EventIgnored          EventKind = "ignored"
)

// Event is a processor notification reduced to what reconciliation needs.
// AssignmentID is the raw correlation value and may be empty or malformed.
type Event struct {
	ID           string
	Type         string
	Kind         EventKind
	AssignmentID string
	Amount       float64
	Reference    string
	Reason       string
}

// ToMinorUnits converts a decimal amount to the smallest currency unit.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
