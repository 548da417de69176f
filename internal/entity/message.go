package entity

import (
	"context"
	"strings"
	"time"
)

// MessagePair is the legacy two-message template shape.
type MessagePair struct {
	Message1 string `json:"message1"`
	Message2 string `json:"message2"`
}

// MessageTemplateSet holds the outreach messages for one category.
type MessageTemplateSet struct {
	ID           string       `json:"id"`
	Category     string       `json:"category"`
	Messages     []string     `json:"messages,omitempty"`
	SendGreeting *bool        `json:"sendGreeting,omitempty"`
	Type1        *MessagePair `json:"type1,omitempty"`
	Type2        *MessagePair `json:"type2,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// GreetingEnabled defaults to true when the flag was never stored.
func (m *MessageTemplateSet) GreetingEnabled() bool {
	return m.SendGreeting == nil || *m.SendGreeting
}

// Bodies returns the messages to transmit in order: the array format when
// present, otherwise the legacy type1 pair. Blank bodies are dropped.
func (m *MessageTemplateSet) Bodies() []string {
	var src []string
	switch {
	case m.Messages != nil:
		src = m.Messages
	case m.Type1 != nil:
		src = []string{m.Type1.Message1, m.Type1.Message2}
	}
	out := make([]string, 0, len(src))
	for _, b := range src {
		if strings.TrimSpace(b) != "" {
			out = append(out, b)
		}
	}
	return out
}

// FindTemplateSet matches the category exactly, as stored.
func FindTemplateSet(sets []MessageTemplateSet, category string) *MessageTemplateSet {
	for i := range sets {
		if sets[i].Category == category {
			return &sets[i]
		}
	}
	return nil
}

type MessageRepository interface {
	List(ctx context.Context) ([]MessageTemplateSet, error)
	ReplaceAll(ctx context.Context, sets []MessageTemplateSet) error
}
