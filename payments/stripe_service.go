package payments

import (
	"context"
	"encoding/json"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

const metadataAssignmentID = "assignment_id"

type StripeService struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeService builds the Stripe processor. A nil backends value uses
// Stripe's live endpoints.
func NewStripeService(cfg config.StripeConfig, backends *stripe.Backends) *StripeService {
	return &StripeService{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (s *StripeService) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	assignmentID := req.AssignmentID.String()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(assignmentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Tutoring: " + req.Subject),
					},
					UnitAmount: stripe.Int64(ToMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{metadataAssignmentID: assignmentID},
	}
	if req.CustomerRef != "" {
		params.CustomerEmail = stripe.String(req.CustomerRef)
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "create stripe checkout session")
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *StripeService) ExpireCheckout(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := s.api.CheckoutSessions.Expire(sessionID, params); err != nil {
		return errors.Wrapf(err, "expire stripe checkout session %s", sessionID)
	}
	return nil
}

// ParseEvent verifies the Stripe-Signature header and maps the event.
func (s *StripeService) ParseEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return eventFromStripe(ev)
}

func eventFromStripe(ev stripe.Event) (*Event, error) {
	out := &Event{ID: ev.ID, Type: string(ev.Type), Kind: EventIgnored}

	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed,
		stripe.EventTypeCheckoutSessionExpired:
	default:
		return out, nil
	}

	var sess stripe.CheckoutSession
	if ev.Data == nil {
		return nil, errors.Errorf("stripe event %s has no data", ev.ID)
	}
	if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
		return nil, errors.Wrapf(err, "decode checkout session from event %s", ev.ID)
	}

	out.Reference = sess.ID
	out.Amount = FromMinorUnits(sess.AmountTotal)
	out.AssignmentID = sess.Metadata[metadataAssignmentID]
	if out.AssignmentID == "" {
		out.AssignmentID = sess.ClientReferenceID
	}

	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		// Delayed methods complete unpaid and settle with an async event.
		if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			out.Kind = EventPaymentSucceeded
		}
	case stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		out.Kind = EventPaymentSucceeded
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		out.Kind = EventPaymentFailed
		out.Reason = "payment failed"
	case stripe.EventTypeCheckoutSessionExpired:
		out.Kind = EventPaymentFailed
		out.Reason = "checkout session expired"
	}
	return out, nil
}
