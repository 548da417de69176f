package entity

import (
	"context"
	"time"
)

type Analytics struct {
	TotalLeads     int       `json:"totalLeads"`
	ReachedLeads   int       `json:"reachedLeads"`
	CompletedLeads int       `json:"completedLeads"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// ComputeAnalytics counts leads as of now.
func ComputeAnalytics(leads []Lead, now time.Time) Analytics {
	a := Analytics{TotalLeads: len(leads), LastUpdated: now}
	for i := range leads {
		if leads[i].Reached {
			a.ReachedLeads++
		}
		if leads[i].Completed {
			a.CompletedLeads++
		}
	}
	return a
}

type AnalyticsRepository interface {
	Get(ctx context.Context) (Analytics, error)
	Save(ctx context.Context, a Analytics) error
}
