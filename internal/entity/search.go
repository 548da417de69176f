package entity

import (
	"context"
	"time"
)

// OrganicResult is one business candidate extracted from the search provider.
type OrganicResult struct {
	Position int     `json:"position"`
	Title    string  `json:"title"`
	Link     string  `json:"link"`
	Snippet  string  `json:"snippet"`
	Address  string  `json:"address,omitempty"`
	Phone    string  `json:"phone"`
	Rating   float64 `json:"rating,omitempty"`
	Reviews  int     `json:"reviews,omitempty"`
}

type SearchResults struct {
	Organic         []OrganicResult  `json:"organic"`
	KnowledgeGraph  map[string]any   `json:"knowledgeGraph"`
	PeopleAlsoAsk   []map[string]any `json:"peopleAlsoAsk"`
	RelatedSearches []map[string]any `json:"relatedSearches"`
}

// LastSearch is the most recent filtered search, kept for export.
type LastSearch struct {
	Search    string         `json:"search"`
	Category  string         `json:"category"`
	Results   *SearchResults `json:"results"`
	Timestamp *time.Time     `json:"timestamp"`
}

type LastSearchRepository interface {
	Get(ctx context.Context) (LastSearch, error)
	Save(ctx context.Context, s LastSearch) error
}

// SearchPage is one provider page. Candidate phones are raw, not yet normalized.
type SearchPage struct {
	Candidates      []OrganicResult
	KnowledgeGraph  map[string]any
	PeopleAlsoAsk   []map[string]any
	RelatedSearches []map[string]any
}
