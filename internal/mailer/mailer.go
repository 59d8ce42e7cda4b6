// Package mailer delivers outreach messages by email through the Mailgun
// API.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultDomain is the Mailgun sending domain.
	DefaultDomain = "ticketai.tech"

	defaultAPIBase        = "https://api.mailgun.net/v3"
	defaultFrontendURL    = "https://ticket-ai-chi.vercel.app"
	defaultRequestTimeout = 30 * time.Second
)

// Sentinel errors for the failure modes callers branch on.
var (
	ErrNotConfigured     = errors.New("mailgun API key not configured")
	ErrAuthFailed        = errors.New("email service authentication failed")
	ErrRateLimitExceeded = errors.New("email rate limit exceeded")
)

// Config holds Mailgun connection settings.
type Config struct {
	APIKey      string
	Domain      string
	APIBase     string
	FrontendURL string
}

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string

	// TicketID, when set, makes the email link to the ticket instead of the
	// dashboard.
	TicketID string
}

// Mailer sends HTML emails via Mailgun.
type Mailer struct {
	apiKey      string
	domain      string
	apiBase     string
	frontendURL string
	sender      string
	httpClient  *http.Client
}

// New creates a Mailer. A missing API key is a configuration error.
func New(cfg Config) (*Mailer, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Domain == "" {
		cfg.Domain = DefaultDomain
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = defaultFrontendURL
	}
	return &Mailer{
		apiKey:      cfg.APIKey,
		domain:      cfg.Domain,
		apiBase:     cfg.APIBase,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		sender:      fmt.Sprintf("postmaster@%s", cfg.Domain),
		httpClient:  &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

// Send delivers msg and returns the Mailgun message ID.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	form := url.Values{}
	form.Set("from", m.sender)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("html", m.renderHTML(msg))

	endpoint := fmt.Sprintf("%s/%s/messages", m.apiBase, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build mailgun request: %w", err)
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrAuthFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimitExceeded
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("failed to send email: mailgun returned %d: %s", resp.StatusCode, string(body))
	}

	return parseMessageID(body), nil
}
