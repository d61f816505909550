// Package resend delivers alert email through the Resend transactional API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Adityad84/neural-track/internal/notify"
)

const (
	defaultBaseURL = "https://api.resend.com"
	httpTimeout    = 10 * time.Second
)

// Sender posts messages to the Resend /emails endpoint.
type Sender struct {
	apiKey  string
	from    string
	to      string
	baseURL string
	client  *http.Client
}

// New creates a Resend sender for a fixed sender/recipient pair.
func New(apiKey, from, to string) *Sender {
	return &Sender{
		apiKey:  apiKey,
		from:    from,
		to:      to,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// Name identifies the channel in logs and metrics.
func (s *Sender) Name() string { return "resend" }

// Send posts one email. A non-2xx response is an error; the caller decides
// what to do with it (in practice: log it, nothing more).
func (s *Sender) Send(ctx context.Context, msg *notify.Message) error {
	payload := map[string]any{
		"from":    s.from,
		"to":      []string{s.to},
		"subject": msg.Subject,
		"html":    msg.HTMLBody,
	}
	if msg.Attachment != nil {
		payload["attachments"] = []notify.Attachment{*msg.Attachment}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("resend: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend: post email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend: api returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
