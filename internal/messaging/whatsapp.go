package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendazap/agendazap/pkg/logging"
)

var whatsappTracer = otel.Tracer("agendazap.internal.messaging")

// ErrDeliveryTimeout is returned when the delivery status never settles
// within the wait window. Callers treat it as best-effort: the booking the
// reply reports on is already committed.
var ErrDeliveryTimeout = errors.New("messaging: delivery status timeout")

// Channel delivers replies to the end user and reports delivery status.
type Channel interface {
	Send(ctx context.Context, to, body string) (string, error)
	WaitForDelivery(ctx context.Context, messageSID string, timeout time.Duration) (string, error)
}

// WhatsAppSender posts WhatsApp messages through Twilio's REST API.
type WhatsAppSender struct {
	accountSID   string
	authToken    string
	from         string
	maxRetries   int
	pollInterval time.Duration
	httpClient   *http.Client
	baseURL      string
	logger       *logging.Logger
}

// NewWhatsAppSender builds a sender with sane defaults. from must carry the
// "whatsapp:" prefix, e.g. "whatsapp:+14155238886".
func NewWhatsAppSender(accountSID, authToken, from string, maxRetries int, pollInterval time.Duration, logger *logging.Logger) *WhatsAppSender {
	if logger == nil {
		logger = logging.Default()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &WhatsAppSender{
		accountSID:   accountSID,
		authToken:    authToken,
		from:         from,
		maxRetries:   maxRetries,
		pollInterval: pollInterval,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: "https://api.twilio.com",
		logger:  logger,
	}
}

var _ Channel = (*WhatsAppSender)(nil)

// Send dispatches a single WhatsApp message, retrying transient failures.
// Returns the provider message SID.
func (s *WhatsAppSender) Send(ctx context.Context, to, body string) (string, error) {
	if s.accountSID == "" || s.authToken == "" {
		return "", errors.New("messaging: twilio credentials missing")
	}
	if to == "" {
		return "", errors.New("messaging: to required")
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("messaging: body required")
	}

	ctx, span := whatsappTracer.Start(ctx, "messaging.whatsapp.send")
	defer span.End()
	span.SetAttributes(attribute.String("agendazap.to", to))

	payload := url.Values{}
	payload.Set("To", withWhatsAppPrefix(to))
	payload.Set("From", withWhatsAppPrefix(s.from))
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
		if err != nil {
			lastErr = err
			break
		}
		req.SetBasicAuth(s.accountSID, s.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				var parsed struct {
					SID    string `json:"sid"`
					Status string `json:"status"`
				}
				if err := json.Unmarshal(respBody, &parsed); err != nil {
					lastErr = fmt.Errorf("messaging: decode twilio response: %w", err)
					break
				}
				s.logger.Info("whatsapp message sent", "to", to, "sid", parsed.SID, "status", parsed.Status)
				return parsed.SID, nil
			}
			lastErr = fmt.Errorf("messaging: twilio send failed: %s", formatTwilioError(resp.StatusCode, respBody))
			// Don't retry non-rate-limit 4xx errors.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != 429 {
				break
			}
		}

		if attempt < s.maxRetries {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
	}
	return "", lastErr
}

// WaitForDelivery polls the message resource until the status settles or the
// timeout elapses. Terminal statuses are delivered, failed and undelivered.
func (s *WhatsAppSender) WaitForDelivery(ctx context.Context, messageSID string, timeout time.Duration) (string, error) {
	if messageSID == "" {
		return "", errors.New("messaging: message sid required")
	}

	ctx, span := whatsappTracer.Start(ctx, "messaging.whatsapp.wait_delivery")
	defer span.End()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, err := s.fetchStatus(ctx, messageSID)
		if err != nil {
			span.RecordError(err)
			return "", err
		}
		switch status {
		case "delivered", "failed", "undelivered":
			s.logger.Info("whatsapp delivery settled", "sid", messageSID, "status", status)
			return status, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
	s.logger.Warn("whatsapp delivery status timeout", "sid", messageSID)
	return "", ErrDeliveryTimeout
}

func (s *WhatsAppSender) fetchStatus(ctx context.Context, messageSID string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages/%s.json", s.baseURL, s.accountSID, messageSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("messaging: fetch status: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("messaging: fetch status failed: %s", formatTwilioError(resp.StatusCode, body))
	}
	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("messaging: decode status response: %w", err)
	}
	return parsed.Status, nil
}

func withWhatsAppPrefix(number string) string {
	if number == "" || strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}
