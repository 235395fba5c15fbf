package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const brevoBaseURL = "https://api.brevo.com"

// Mailer sends one HTML email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error
}

type BrevoService struct {
	apiKey      string
	senderEmail string
	senderName  string
	baseURL     string
	client      *http.Client
	log         *zap.Logger
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewBrevoService returns nil when the API key or sender is missing, which
// disables email.
func NewBrevoService(cfg config.EmailConfig, log *zap.Logger) *BrevoService {
	if cfg.BrevoAPIKey == "" || cfg.Sender == "" {
		log.Warn("email service not configured; missing BREVO_API_KEY or EMAIL_SENDER")
		return nil
	}
	return &BrevoService{
		apiKey:      cfg.BrevoAPIKey,
		senderEmail: cfg.Sender,
		senderName:  cfg.SenderName,
		baseURL:     brevoBaseURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log.Named("email"),
	}
}

func (s *BrevoService) Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error {
	at := strings.Index(toEmail, "@")
	if at <= 0 {
		return errors.Errorf("invalid recipient email: %q", toEmail)
	}
	if toName == "" {
		toName = toEmail[:at]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.senderName, "email": s.senderEmail},
		To:          []map[string]string{{"email": toEmail, "name": toName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return errors.Wrap(err, "marshal brevo payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build brevo request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send brevo request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	s.log.Debug("email sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}
