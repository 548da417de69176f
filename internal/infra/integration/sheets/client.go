// Package sheets writes to Google Sheets through the v4 REST API using a
// service account.
package sheets

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2/jwt"

	"github.com/xavierca1/leadreach/internal/infra/integration"
)

const (
	DefaultBaseURL = "https://sheets.googleapis.com"
	TokenURL       = "https://oauth2.googleapis.com/token"
	scope          = "https://www.googleapis.com/auth/spreadsheets"
)

// Client implements usecase.SpreadsheetClient.
type Client struct {
	baseURL string
	http    *integration.Client
}

// NewClient authenticates as the service account on first use.
func NewClient(email, privateKey string) *Client {
	conf := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{scope},
		TokenURL:   TokenURL,
	}
	c := newClient(DefaultBaseURL)
	c.http.HTTP = conf.Client(context.Background())
	c.http.HTTP.Timeout = 30 * time.Second
	return c
}

func newClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    integration.NewClient("google-sheets", 30*time.Second),
	}
}

type spreadsheet struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

func (c *Client) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	var s spreadsheet
	path := "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) + "?fields=sheets.properties.title"
	if err := c.call(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(s.Sheets))
	for _, sh := range s.Sheets {
		titles = append(titles, sh.Properties.Title)
	}
	return titles, nil
}

func (c *Client) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	body := map[string]any{
		"requests": []any{
			map[string]any{"addSheet": map[string]any{"properties": map[string]any{"title": title}}},
		},
	}
	return c.call(ctx, http.MethodPost, "/v4/spreadsheets/"+url.PathEscape(spreadsheetID)+":batchUpdate", body, nil)
}

func (c *Client) ClearRange(ctx context.Context, spreadsheetID, rng string) error {
	path := "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(rng) + ":clear"
	return c.call(ctx, http.MethodPost, path, map[string]any{}, nil)
}

func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]string) error {
	path := "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(rng) + "?valueInputOption=RAW"
	body := map[string]any{
		"range":          rng,
		"majorDimension": "ROWS",
		"values":         values,
	}
	return c.call(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	raw, err := c.http.Do(req)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode sheets response: %w", err)
		}
	}
	return nil
}
