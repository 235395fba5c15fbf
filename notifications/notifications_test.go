package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewBrevoService_DisabledWithoutConfig(t *testing.T) {
	assert.Nil(t, NewBrevoService(config.EmailConfig{}, zaptest.NewLogger(t)))
}

func TestBrevoService_Send(t *testing.T) {
	var got brevoPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := NewBrevoService(config.EmailConfig{BrevoAPIKey: "key-123", Sender: "noreply@example.com", SenderName: "Tutors"}, zaptest.NewLogger(t))
	require.NotNil(t, svc)
	svc.baseURL = srv.URL

	require.NoError(t, svc.Send(context.Background(), "sam@example.com", "", "Hello", "<p>hi</p>"))
	assert.Equal(t, "Hello", got.Subject)
	assert.Equal(t, "sam", got.To[0]["name"])
	assert.Equal(t, "noreply@example.com", got.Sender["email"])

	assert.Error(t, svc.Send(context.Background(), "not-an-email", "", "Hello", "<p>hi</p>"))
}

func TestBrevoService_SendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Key not found"}`))
	}))
	defer srv.Close()

	svc := NewBrevoService(config.EmailConfig{BrevoAPIKey: "bad", Sender: "noreply@example.com"}, zaptest.NewLogger(t))
	svc.baseURL = srv.URL

	err := svc.Send(context.Background(), "sam@example.com", "Sam", "Hello", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

type sentMail struct {
	to, subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, toEmail, _, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: toEmail, subject: subject})
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	received map[uuid.UUID]int
}

func (p *fakePublisher) Publish(userID uuid.UUID, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.received == nil {
		p.received = map[uuid.UUID]int{}
	}
	p.received[userID]++
}

func testEvent(status models.AssignmentStatus) models.AssignmentEvent {
	return models.AssignmentEvent{
		AssignmentID: uuid.New(),
		Subject:      "Calculus <II>",
		Status:       status,
		Student:      models.EventParty{UserID: uuid.New(), Name: "Sam", Email: "sam@example.com"},
		Tutor:        models.EventParty{UserID: uuid.New(), Name: "Tess", Email: "tess@example.com"},
	}
}

func TestDispatcher_AssignmentChanged(t *testing.T) {
	mailer := &fakeMailer{}
	hub := &fakePublisher{}
	d := NewDispatcher(mailer, hub, zaptest.NewLogger(t))

	offer := testEvent(models.StatusPendingOffer)
	d.AssignmentChanged(context.Background(), offer)
	started := testEvent(models.StatusInProgress)
	d.AssignmentChanged(context.Background(), started)
	d.AssignmentChanged(context.Background(), testEvent(models.StatusPaymentPending))
	d.Wait()

	assert.Equal(t, 1, hub.received[offer.Student.UserID])
	assert.Equal(t, 1, hub.received[offer.Tutor.UserID])
	assert.Len(t, hub.received, 6)

	require.Len(t, mailer.sent, 3)
	assert.ElementsMatch(t, []sentMail{
		{to: "tess@example.com", subject: "New tutoring offer"},
		{to: "sam@example.com", subject: "Payment received"},
		{to: "tess@example.com", subject: "Assignment started"},
	}, mailer.sent)
}

func TestEmailsFor_EscapesAndCarriesReason(t *testing.T) {
	ev := testEvent(models.StatusCanceled)
	ev.Reason = "payment expired"

	mails := emailsFor(ev)
	require.Len(t, mails, 2)
	assert.Contains(t, mails[0].body, "Calculus &lt;II&gt;")
	assert.Contains(t, mails[0].body, "Reason: payment expired")

	ev.Tutor.Email = ""
	assert.Len(t, emailsFor(ev), 1)
}

func TestDispatcher_WithoutChannels(t *testing.T) {
	d := NewDispatcher(nil, nil, zaptest.NewLogger(t))
	d.AssignmentChanged(context.Background(), testEvent(models.StatusCompleted))
	d.Wait()
}
