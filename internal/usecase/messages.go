package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/leadreach/internal/entity"
)

// SaveMessagesInput accepts the array format (Messages) or the legacy
// two-pair format. Messages set, even empty, selects the array format.
type SaveMessagesInput struct {
	Category      string   `json:"category"`
	Messages      []string `json:"messages"`
	SendGreeting  *bool    `json:"sendGreeting"`
	Type1Message1 string   `json:"type1Message1"`
	Type1Message2 string   `json:"type1Message2"`
	Type2Message1 string   `json:"type2Message1"`
	Type2Message2 string   `json:"type2Message2"`
}

type SaveMessagesOutput struct {
	Message string                    `json:"message"`
	Data    entity.MessageTemplateSet `json:"data"`
}

type MessagesUseCase struct {
	Repo entity.MessageRepository
	now  func() time.Time
}

func NewMessagesUseCase(repo entity.MessageRepository) *MessagesUseCase {
	return &MessagesUseCase{Repo: repo, now: time.Now}
}

func (uc *MessagesUseCase) List(ctx context.Context) ([]entity.MessageTemplateSet, error) {
	sets, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, storageError("read messages", err)
	}
	return sets, nil
}

// Save creates or wholesale replaces the template set for a category,
// keeping its id and creation time.
func (uc *MessagesUseCase) Save(ctx context.Context, in SaveMessagesInput) (*SaveMessagesOutput, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, validationError("Category is required")
	}

	now := uc.now()
	set := entity.MessageTemplateSet{Category: category, UpdatedAt: now}

	if in.Messages != nil {
		bodies := make([]string, 0, len(in.Messages))
		for _, m := range in.Messages {
			if m = strings.TrimSpace(m); m != "" {
				bodies = append(bodies, m)
			}
		}
		if len(bodies) == 0 {
			return nil, validationError("At least one message is required")
		}
		greeting := true
		if in.SendGreeting != nil {
			greeting = *in.SendGreeting
		}
		set.Messages = bodies
		set.SendGreeting = &greeting
	} else {
		t1a, t1b := strings.TrimSpace(in.Type1Message1), strings.TrimSpace(in.Type1Message2)
		t2a, t2b := strings.TrimSpace(in.Type2Message1), strings.TrimSpace(in.Type2Message2)
		if t1a == "" || t1b == "" {
			return nil, validationError("Both Type 1 messages are required")
		}
		if t2a == "" || t2b == "" {
			return nil, validationError("Both Type 2 messages are required")
		}
		set.Type1 = &entity.MessagePair{Message1: t1a, Message2: t1b}
		set.Type2 = &entity.MessagePair{Message1: t2a, Message2: t2b}
	}

	sets, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	if existing := entity.FindTemplateSet(sets, category); existing != nil {
		set.ID = existing.ID
		set.CreatedAt = existing.CreatedAt
		*existing = set
	} else {
		set.ID = uuid.NewString()
		set.CreatedAt = now
		sets = append(sets, set)
	}

	if err := uc.Repo.ReplaceAll(ctx, sets); err != nil {
		return nil, storageError("save messages", err)
	}
	return &SaveMessagesOutput{Message: "Messages saved successfully", Data: set}, nil
}
