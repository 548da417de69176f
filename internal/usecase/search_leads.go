package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/logging"
)

const DefaultMaxSearchPages = 50

type SearchInput struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

type SearchOutput struct {
	Message  string                `json:"message"`
	Search   string                `json:"search"`
	Category string                `json:"category"`
	Results  *entity.SearchResults `json:"results"`
}

// SearchLeadsUseCase pages through the provider, keeps candidates with a
// valid mobile number, drops businesses already saved as leads and persists
// the outcome as the last search.
type SearchLeadsUseCase struct {
	Provider   SearchProvider
	Leads      entity.LeadRepository
	LastSearch entity.LastSearchRepository
	MaxPages   int
	now        func() time.Time
}

func NewSearchLeadsUseCase(provider SearchProvider, leads entity.LeadRepository, last entity.LastSearchRepository, maxPages int) *SearchLeadsUseCase {
	if maxPages <= 0 {
		maxPages = DefaultMaxSearchPages
	}
	return &SearchLeadsUseCase{Provider: provider, Leads: leads, LastSearch: last, MaxPages: maxPages, now: time.Now}
}

func (uc *SearchLeadsUseCase) Execute(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(in.Search)
	if query == "" {
		return nil, validationError("Search query is required")
	}
	if uc.Provider == nil {
		return nil, &TechnicalError{Code: CodeNotConfigured, Message: "API key not configured"}
	}
	log := logging.Ctx(ctx)

	results := &entity.SearchResults{
		Organic:         []entity.OrganicResult{},
		PeopleAlsoAsk:   []map[string]any{},
		RelatedSearches: []map[string]any{},
	}

	page := 1
	for ; page <= uc.MaxPages; page++ {
		p, err := uc.Provider.FetchPage(ctx, query, page)
		if err != nil {
			return nil, &TechnicalError{Code: CodeExternal, Message: "Failed to perform search", Details: err.Error(), Err: err}
		}
		if len(p.Candidates) == 0 {
			log.Debug().Int("page", page).Msg("no results, stopping pagination")
			break
		}

		valid := 0
		for _, c := range p.Candidates {
			phone := NormalizeMobile(c.Phone)
			if phone == "" {
				continue
			}
			c.Phone = phone
			c.Position = len(results.Organic) + 1
			results.Organic = append(results.Organic, c)
			valid++
		}
		if valid == 0 {
			log.Debug().Int("page", page).Msg("page had no mobile numbers, stopping pagination")
			break
		}

		if page == 1 {
			results.KnowledgeGraph = p.KnowledgeGraph
			if p.PeopleAlsoAsk != nil {
				results.PeopleAlsoAsk = p.PeopleAlsoAsk
			}
			if p.RelatedSearches != nil {
				results.RelatedSearches = p.RelatedSearches
			}
		}
	}

	leads, err := uc.Leads.List(ctx)
	if err != nil {
		return nil, storageError("read leads", err)
	}
	total := len(results.Organic)
	results.Organic = excludeSavedLeads(results.Organic, leads)

	log.Info().
		Str("search", query).
		Int("pages", page-1).
		Int("results", total).
		Int("already_saved", total-len(results.Organic)).
		Msg("search completed")

	now := uc.now()
	last := entity.LastSearch{Search: query, Category: in.Category, Results: results, Timestamp: &now}
	if err := uc.LastSearch.Save(ctx, last); err != nil {
		return nil, storageError("save last search", err)
	}

	return &SearchOutput{
		Message:  "Search completed",
		Search:   in.Search,
		Category: in.Category,
		Results:  results,
	}, nil
}

// excludeSavedLeads drops results whose phone matches a saved lead. Name and
// website matches only count together with the same phone, so phone decides.
func excludeSavedLeads(results []entity.OrganicResult, leads []entity.Lead) []entity.OrganicResult {
	saved := make(map[string]struct{}, len(leads))
	for i := range leads {
		if p := strings.TrimSpace(leads[i].ContactNumber); p != "" {
			saved[p] = struct{}{}
		}
	}
	out := make([]entity.OrganicResult, 0, len(results))
	for _, r := range results {
		if _, dup := saved[r.Phone]; dup {
			continue
		}
		out = append(out, r)
	}
	return out
}
