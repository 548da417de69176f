package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/leadreach/internal/entity"
)

type MarkReachedOutput struct {
	Message   string           `json:"message"`
	Lead      entity.Lead      `json:"lead"`
	Analytics entity.Analytics `json:"analytics"`
}

// LeadQueries serves the read side of leads plus manual status changes.
type LeadQueries struct {
	Leads      entity.LeadRepository
	Analytics  entity.AnalyticsRepository
	LastSearch entity.LastSearchRepository
	now        func() time.Time
}

func NewLeadQueries(leads entity.LeadRepository, analytics entity.AnalyticsRepository, last entity.LastSearchRepository) *LeadQueries {
	return &LeadQueries{Leads: leads, Analytics: analytics, LastSearch: last, now: time.Now}
}

func (q *LeadQueries) List(ctx context.Context) ([]entity.Lead, error) {
	leads, err := q.Leads.List(ctx)
	if err != nil {
		return nil, storageError("read leads", err)
	}
	return leads, nil
}

// Pending lists leads that have not been messaged or marked reached.
func (q *LeadQueries) Pending(ctx context.Context) ([]entity.Lead, error) {
	leads, err := q.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if !l.Contacted() {
			out = append(out, l)
		}
	}
	return out, nil
}

// RefreshAnalytics recomputes the counters from the lead store and persists them.
func (q *LeadQueries) RefreshAnalytics(ctx context.Context) (entity.Analytics, error) {
	leads, err := q.List(ctx)
	if err != nil {
		return entity.Analytics{}, err
	}
	a := entity.ComputeAnalytics(leads, q.now())
	if err := q.Analytics.Save(ctx, a); err != nil {
		return entity.Analytics{}, storageError("save analytics", err)
	}
	return a, nil
}

func (q *LeadQueries) LastSearchResults(ctx context.Context) (entity.LastSearch, error) {
	s, err := q.LastSearch.Get(ctx)
	if err != nil {
		return entity.LastSearch{}, storageError("read last search", err)
	}
	return s, nil
}

func (q *LeadQueries) MarkReached(ctx context.Context, leadID string) (*MarkReachedOutput, error) {
	leads, err := q.List(ctx)
	if err != nil {
		return nil, err
	}
	lead := entity.FindLead(leads, leadID)
	if lead == nil {
		return nil, notFoundError("Lead not found")
	}
	lead.MarkReached(q.now())
	if err := q.Leads.ReplaceAll(ctx, leads); err != nil {
		return nil, storageError("save leads", err)
	}

	a, err := q.RefreshAnalytics(ctx)
	if err != nil {
		return nil, err
	}
	return &MarkReachedOutput{Message: "Lead marked as reached", Lead: *lead, Analytics: a}, nil
}
