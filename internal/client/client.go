// Package client is a typed client for the outreach API, used by the CLI.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/infra/integration"
	"github.com/xavierca1/leadreach/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadreach/internal/usecase"
)

const serviceName = "leadreach-api"

// DefaultTimeout covers a full batch: every lead's messages plus the pacing pauses.
const DefaultTimeout = 5 * time.Minute

// APIError is a non-2xx reply decoded from the API's error body.
type APIError struct {
	Status           int
	Message          string
	Details          string
	AvailableLeads   int
	MinutesRemaining int
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// RateLimited reports whether the server rejected the batch for quota.
func (e *APIError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

type errorBody struct {
	Error            string `json:"error"`
	Message          string `json:"message"`
	Details          string `json:"details"`
	AvailableLeads   int    `json:"availableLeads"`
	MinutesRemaining int    `json:"minutesRemaining"`
}

type Client struct {
	baseURL string
	http    *integration.Client
}

// New targets baseURL, the server root without the /api suffix.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    integration.NewClient(serviceName, timeout),
	}
}

// SendMessages dispatches one batch of at most ten leads.
func (c *Client) SendMessages(ctx context.Context, leadIDs []string) (*usecase.SendMessagesOutput, error) {
	var out usecase.SendMessagesOutput
	body := map[string][]string{"leadIds": leadIDs}
	if err := c.call(ctx, http.MethodPost, "/api/whatsapp/send-messages", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Leads lists saved leads; pending keeps only those never contacted.
func (c *Client) Leads(ctx context.Context, pending bool) ([]entity.Lead, error) {
	path := "/api/leads"
	if pending {
		path += "?" + url.Values{"pending": {"true"}}.Encode()
	}
	var leads []entity.Lead
	if err := c.call(ctx, http.MethodGet, path, nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (c *Client) RateLimitStatus(ctx context.Context) (*usecase.RateLimitStatus, error) {
	var st usecase.RateLimitStatus
	if err := c.call(ctx, http.MethodGet, "/api/rate-limit/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) WhatsAppStatus(ctx context.Context) (*whatsapp.Snapshot, error) {
	var snap whatsapp.Snapshot
	if err := c.call(ctx, http.MethodGet, "/api/whatsapp/status", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var reader *bytes.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, err := c.http.Do(req)
	if err != nil {
		var se *integration.StatusError
		if errors.As(err, &se) {
			return decodeAPIError(se.Status, data)
		}
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return &APIError{Status: status, Message: strings.TrimSpace(string(data))}
	}
	details := body.Details
	if details == "" {
		details = body.Message
	}
	return &APIError{
		Status:           status,
		Message:          body.Error,
		Details:          details,
		AvailableLeads:   body.AvailableLeads,
		MinutesRemaining: body.MinutesRemaining,
	}
}
