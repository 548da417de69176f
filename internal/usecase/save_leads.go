package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/logging"
)

type SaveLeadsInput struct {
	Leads []LeadInput `json:"leads"`
}

type LeadInput struct {
	LeadID        string     `json:"leadId"`
	BusinessName  string     `json:"businessName"`
	ContactNumber string     `json:"contactNumber"`
	EmailID       string     `json:"emailId"`
	Website       string     `json:"website"`
	SearchPhrase  string     `json:"searchPhrase"`
	Category      string     `json:"category"`
	SavedDate     *time.Time `json:"savedDate"`
}

type SaveLeadsOutput struct {
	Message      string           `json:"message"`
	Count        int              `json:"count"`
	TotalLeads   int              `json:"totalLeads"`
	SavedLeadIDs []string         `json:"savedLeadIds"`
	Analytics    entity.Analytics `json:"analytics"`
}

// SaveLeadsUseCase appends new leads. Entries missing an id, business name or
// search phrase are skipped, and duplicates of saved leads are ignored, so
// resubmitting the same leads saves nothing.
type SaveLeadsUseCase struct {
	Leads     entity.LeadRepository
	Analytics entity.AnalyticsRepository
	now       func() time.Time
}

func NewSaveLeadsUseCase(leads entity.LeadRepository, analytics entity.AnalyticsRepository) *SaveLeadsUseCase {
	return &SaveLeadsUseCase{Leads: leads, Analytics: analytics, now: time.Now}
}

func (uc *SaveLeadsUseCase) Execute(ctx context.Context, in SaveLeadsInput) (*SaveLeadsOutput, error) {
	if in.Leads == nil {
		return nil, validationError("Leads array is required")
	}

	existing, err := uc.Leads.List(ctx)
	if err != nil {
		return nil, storageError("read leads", err)
	}
	previous := append([]entity.Lead(nil), existing...)
	now := uc.now()

	saved := []string{}
	for _, in := range in.Leads {
		if in.LeadID == "" || in.BusinessName == "" || in.SearchPhrase == "" {
			logging.Ctx(ctx).Warn().Str("lead_id", in.LeadID).Msg("skipping lead with missing required fields")
			continue
		}
		lead := entity.Lead{
			LeadID:        in.LeadID,
			BusinessName:  in.BusinessName,
			ContactNumber: in.ContactNumber,
			EmailID:       in.EmailID,
			Website:       in.Website,
			SearchPhrase:  in.SearchPhrase,
			Category:      in.Category,
			SavedDate:     now,
		}
		if in.SavedDate != nil {
			lead.SavedDate = *in.SavedDate
		}
		if containsDuplicate(existing, &lead) {
			continue
		}
		existing = append(existing, lead)
		saved = append(saved, lead.LeadID)
	}

	var analytics entity.Analytics
	tx := NewTransaction()
	tx.AddOperation("save_leads", func(ctx context.Context) error {
		return uc.Leads.ReplaceAll(ctx, existing)
	})
	tx.AddCompensation("restore_leads", func(ctx context.Context) error {
		return uc.Leads.ReplaceAll(ctx, previous)
	})
	tx.AddOperation("refresh_analytics", func(ctx context.Context) error {
		analytics = entity.ComputeAnalytics(existing, now)
		return uc.Analytics.Save(ctx, analytics)
	})
	if err := tx.Execute(ctx); err != nil {
		return nil, storageError("save leads", err)
	}

	logging.Ctx(ctx).Info().Int("saved", len(saved)).Int("total", len(existing)).Msg("leads saved")

	return &SaveLeadsOutput{
		Message:      "Leads saved successfully",
		Count:        len(saved),
		TotalLeads:   len(existing),
		SavedLeadIDs: saved,
		Analytics:    analytics,
	}, nil
}

func containsDuplicate(leads []entity.Lead, candidate *entity.Lead) bool {
	for i := range leads {
		if leads[i].Duplicates(candidate) {
			return true
		}
	}
	return false
}
