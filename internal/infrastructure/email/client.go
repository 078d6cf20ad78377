package email

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"vininfo.backend/internal/config"
	"vininfo.backend/pkg/logger"
)

const (
	defaultAPIURL = "https://api.resend.com/"
	defaultFrom   = "VINInfo <noreply@mail.vininfo.cz>"
	maxAttempts   = 3
)

// ErrNotConfigured is returned when no provider key is set
var ErrNotConfigured = errors.New("email provider is not configured")

// ProviderError is a rejection reported by the provider
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("Resend API error: %d - %s", e.Status, e.Body)
}

// Message is one outgoing email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// ResendClient sends email through the Resend SDK
type ResendClient struct {
	apiKey     string
	from       string
	baseURL    *url.URL
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewResendClient creates a client from the email settings
func NewResendClient(cfg config.EmailConfig) *ResendClient {
	c := &ResendClient{
		apiKey:     cfg.ResendAPIKey,
		from:       cfg.From,
		baseURL:    parseBaseURL(cfg.APIURL),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sleep:      sleepContext,
	}
	if c.from == "" {
		c.from = defaultFrom
	}
	return c
}

// parseBaseURL accepts either the API root or the legacy ".../emails" endpoint.
func parseBaseURL(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultAPIURL
	}
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "/"), "/emails") + "/"
	u, err := url.Parse(raw)
	if err != nil {
		u, _ = url.Parse(defaultAPIURL)
	}
	return u
}

// Configured reports whether a provider key is present
func (c *ResendClient) Configured() bool {
	return c.apiKey != ""
}

// Send delivers msg. Rate limits and network failures are retried with
// exponential backoff; any other rejection fails immediately.
func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	req := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		retryable, err := c.send(ctx, req)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == maxAttempts-1 {
			break
		}

		wait := backoff(attempt)
		logger.Warn(ctx, "Email send failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return lastErr
}

// send makes one SDK call and classifies the outcome.
func (c *ResendClient) send(ctx context.Context, req *resend.SendEmailRequest) (bool, error) {
	rec := &statusRecorder{next: c.httpClient.Transport}
	sdk := resend.NewCustomClient(&http.Client{Transport: rec, Timeout: c.httpClient.Timeout}, c.apiKey)
	sdk.BaseURL = c.baseURL

	_, err := sdk.Emails.SendWithContext(ctx, req)
	if err == nil {
		return false, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if rec.status >= 200 && rec.status < 300 {
		// Accepted; only the response body was unreadable.
		return false, nil
	}
	if rec.status == 0 {
		// No response reached us.
		return true, err
	}

	perr := &ProviderError{Status: rec.status, Body: providerMessage(err)}
	return errors.Is(err, resend.ErrRateLimit), perr
}

func providerMessage(err error) string {
	var rl *resend.RateLimitError
	if errors.As(err, &rl) {
		return rl.Message
	}
	return strings.TrimPrefix(err.Error(), "[ERROR]: ")
}

// statusRecorder keeps the status of the last response the SDK received.
type statusRecorder struct {
	next   http.RoundTripper
	status int
}

func (s *statusRecorder) RoundTrip(r *http.Request) (*http.Response, error) {
	next := s.next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(r)
	if resp != nil {
		s.status = resp.StatusCode
	}
	return resp, err
}

// backoff is 1s, 2s, 4s for attempts 0, 1, 2.
func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt+1))) * 500 * time.Millisecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
