// Package whatsapp drives a self-hosted multi-device WhatsApp gateway over
// HTTP and tracks the link state of its single session.
package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/xavierca1/leadreach/internal/infra/integration"
)

const serviceName = "whatsapp-gateway"

// Client calls the gateway API. It implements usecase.MessageTransport.
type Client struct {
	baseURL string
	token   string
	http    *integration.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    integration.NewClient(serviceName, 30*time.Second),
	}
}

// Connect starts the gateway session; a new device then has a QR code to scan.
func (c *Client) Connect(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/session/connect", connectRequest{Subscribe: []string{"Message"}, Immediate: true}, nil)
}

func (c *Client) Status(ctx context.Context) (*SessionStatus, error) {
	var st SessionStatus
	if err := c.call(ctx, http.MethodGet, "/session/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// QRCode returns the pending pairing code as a data URL, or "" when none is pending.
func (c *Client) QRCode(ctx context.Context) (string, error) {
	var qr qrResponse
	if err := c.call(ctx, http.MethodGet, "/session/qr", nil, &qr); err != nil {
		return "", err
	}
	return qr.QRCode, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/session/logout", nil, nil)
}

// SendText sends one text message. phone is digits with country code.
func (c *Client) SendText(ctx context.Context, phone, body string) error {
	var resp sendTextResponse
	if err := c.call(ctx, http.MethodPost, "/chat/send/text", sendTextRequest{Phone: phone, Body: body}, &resp); err != nil {
		return fmt.Errorf("send to %s: %w", phone, err)
	}
	return nil
}

// IsRegistered reports whether phone has a WhatsApp account.
func (c *Client) IsRegistered(ctx context.Context, phone string) (bool, error) {
	var resp checkResponse
	if err := c.call(ctx, http.MethodPost, "/user/check", checkRequest{Phone: []string{phone}}, &resp); err != nil {
		return false, err
	}
	for _, u := range resp.Users {
		if u.Query == phone || strings.HasPrefix(u.JID, phone+"@") {
			return u.IsInWhatsapp, nil
		}
	}
	if len(resp.Users) == 1 {
		return resp.Users[0].IsInWhatsapp, nil
	}
	return false, fmt.Errorf("no registration result for %s", phone)
}

// Ping checks that the gateway answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Status(ctx)
	return err
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Token", c.token)
	}

	raw, err := c.http.Do(req)
	if err != nil {
		var se *integration.StatusError
		if errors.As(err, &se) {
			if msg := gatewayError(raw); msg != "" {
				return fmt.Errorf("gateway %s: %s: %w", path, msg, err)
			}
		}
		return err
	}

	env := envelope[json.RawMessage]{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	if env.Error != "" {
		return fmt.Errorf("gateway %s: %s", path, env.Error)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s data: %w", path, err)
		}
	}
	return nil
}

func gatewayError(raw []byte) string {
	var env envelope[json.RawMessage]
	if json.Unmarshal(raw, &env) != nil {
		return ""
	}
	return env.Error
}
