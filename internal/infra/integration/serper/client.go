// Package serper fetches Google Places results from serper.dev.
package serper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/infra/integration"
	"github.com/xavierca1/leadreach/internal/usecase"
)

const DefaultURL = "https://google.serper.dev/places"

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Client implements usecase.SearchProvider.
type Client struct {
	apiKey  string
	url     string
	http    *integration.Client
	limiter *rate.Limiter
}

func NewClient(apiKey, url string, requestsPerSecond float64) *Client {
	if url == "" {
		url = DefaultURL
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		apiKey:  apiKey,
		url:     url,
		http:    integration.NewClient("serper", 30*time.Second),
		limiter: rate.NewLimiter(limit, 1),
	}
}

type searchRequest struct {
	Q    string `json:"q"`
	Page int    `json:"page"`
}

// response keeps results loosely typed: places and organic entries carry
// different optional fields.
type response struct {
	Places          []map[string]any `json:"places"`
	Organic         []map[string]any `json:"organic"`
	KnowledgeGraph  map[string]any   `json:"knowledgeGraph"`
	PeopleAlsoAsk   []map[string]any `json:"peopleAlsoAsk"`
	RelatedSearches []map[string]any `json:"relatedSearches"`
}

// FetchPage returns one page of candidates with raw phone numbers. An empty
// Candidates slice means the result set is exhausted.
func (c *Client) FetchPage(ctx context.Context, query string, page int) (*entity.SearchPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(searchRequest{Q: query, Page: page})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode serper page %d: %w", page, err)
	}

	out := &entity.SearchPage{
		KnowledgeGraph:  resp.KnowledgeGraph,
		PeopleAlsoAsk:   resp.PeopleAlsoAsk,
		RelatedSearches: resp.RelatedSearches,
	}
	switch {
	case len(resp.Places) > 0:
		for _, p := range resp.Places {
			out.Candidates = append(out.Candidates, fromPlace(p))
		}
	case len(resp.Organic) > 0:
		for _, o := range resp.Organic {
			out.Candidates = append(out.Candidates, fromOrganic(o))
		}
	}
	return out, nil
}

func fromPlace(p map[string]any) entity.OrganicResult {
	attrs, _ := p["attributes"].(map[string]any)
	description := firstString(p, "description", "snippet")

	phone := firstString(p, "phoneNumber", "phone", "telephone")
	if phone == "" && attrs != nil {
		phone = firstString(attrs, "phone", "phoneNumber", "telephone")
	}
	if phone == "" {
		phone = usecase.ExtractPhone(description)
	}

	website := firstString(p, "website", "url", "link")
	if website == "" && attrs != nil {
		website = firstString(attrs, "website", "url", "link")
	}
	if website == "" {
		website = urlPattern.FindString(description)
	}

	r := entity.OrganicResult{
		Title:   firstString(p, "title", "name"),
		Link:    website,
		Snippet: description,
		Address: firstString(p, "address"),
		Phone:   phone,
	}
	if v, ok := p["rating"].(float64); ok {
		r.Rating = v
	}
	if v, ok := p["ratingCount"].(float64); ok {
		r.Reviews = int(v)
	} else if v, ok := p["reviews"].(float64); ok {
		r.Reviews = int(v)
	}
	return r
}

func fromOrganic(o map[string]any) entity.OrganicResult {
	snippet := firstString(o, "snippet")
	phone := usecase.ExtractPhone(snippet)
	if attrs, ok := o["attributes"].(map[string]any); ok && phone == "" {
		for _, v := range attrs {
			if s, ok := v.(string); ok {
				if phone = usecase.ExtractPhone(s); phone != "" {
					break
				}
			}
		}
	}

	website := firstString(o, "link", "url", "website")
	if website == "" {
		website = urlPattern.FindString(snippet)
	}
	return entity.OrganicResult{
		Title:   firstString(o, "title"),
		Link:    website,
		Snippet: snippet,
		Phone:   phone,
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
