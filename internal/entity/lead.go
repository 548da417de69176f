package entity

import (
	"context"
	"strings"
	"time"
)

// Lead is a business captured from search results and tracked through outreach.
type Lead struct {
	LeadID          string     `json:"leadId"`
	BusinessName    string     `json:"businessName"`
	ContactNumber   string     `json:"contactNumber"`
	EmailID         string     `json:"emailId"`
	Website         string     `json:"website"`
	SearchPhrase    string     `json:"searchPhrase"`
	Category        string     `json:"category"`
	SavedDate       time.Time  `json:"savedDate"`
	Reached         bool       `json:"reached"`
	ReachedDate     *time.Time `json:"reachedDate,omitempty"`
	MessageSent     bool       `json:"messageSent"`
	MessageSentDate *time.Time `json:"messageSentDate,omitempty"`
	Completed       bool       `json:"completed"`
}

// Contacted reports whether the lead must not be messaged again.
func (l *Lead) Contacted() bool {
	return l.Reached || l.MessageSent
}

func (l *Lead) MarkReached(now time.Time) {
	l.Reached = true
	l.ReachedDate = &now
}

// MarkMessaged records a completed outreach: reached and messageSent both set.
func (l *Lead) MarkMessaged(now time.Time) {
	l.MarkReached(now)
	l.MessageSent = true
	l.MessageSentDate = &now
}

// Duplicates matches by id, or by the (business name, phone, search phrase) triple.
func (l *Lead) Duplicates(other *Lead) bool {
	if l.LeadID == other.LeadID {
		return true
	}
	return l.BusinessName == other.BusinessName &&
		l.ContactNumber == other.ContactNumber &&
		l.SearchPhrase == other.SearchPhrase
}

// HasContactNumber is false for blank numbers and the "N/A" placeholder exports use.
func (l *Lead) HasContactNumber() bool {
	n := strings.TrimSpace(l.ContactNumber)
	return n != "" && n != "N/A"
}

// FindLead returns a pointer into leads, or nil.
func FindLead(leads []Lead, id string) *Lead {
	for i := range leads {
		if leads[i].LeadID == id {
			return &leads[i]
		}
	}
	return nil
}

type LeadRepository interface {
	List(ctx context.Context) ([]Lead, error)
	ReplaceAll(ctx context.Context, leads []Lead) error
}
