package entity

import (
	"context"
	"time"
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Character is an auxiliary record grouped by category; it plays no part in messaging.
type Character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	ReplaceAll(ctx context.Context, categories []Category) error
}

type CharacterRepository interface {
	List(ctx context.Context) ([]Character, error)
	ReplaceAll(ctx context.Context, characters []Character) error
}
