package entity

type DispatchStatus string

const (
	DispatchSuccess DispatchStatus = "success"
	DispatchSkipped DispatchStatus = "skipped"
	DispatchError   DispatchStatus = "error"
)

// DispatchResult is the per-lead outcome of a send. Not persisted.
type DispatchResult struct {
	LeadID      string         `json:"leadId"`
	Status      DispatchStatus `json:"status"`
	Message     string         `json:"message"`
	PhoneNumber string         `json:"phoneNumber,omitempty"`
}

type DispatchSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func Summarize(results []DispatchResult) DispatchSummary {
	s := DispatchSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case DispatchSuccess:
			s.Success++
		case DispatchSkipped:
			s.Skipped++
		case DispatchError:
			s.Failed++
		}
	}
	return s
}
