package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/leadreach/internal/entity"
)

// CatalogUseCase manages categories and characters.
type CatalogUseCase struct {
	Categories entity.CategoryRepository
	Characters entity.CharacterRepository
	now        func() time.Time
}

func NewCatalogUseCase(categories entity.CategoryRepository, characters entity.CharacterRepository) *CatalogUseCase {
	return &CatalogUseCase{Categories: categories, Characters: characters, now: time.Now}
}

func (uc *CatalogUseCase) ListCategories(ctx context.Context) ([]entity.Category, error) {
	c, err := uc.Categories.List(ctx)
	if err != nil {
		return nil, storageError("read categories", err)
	}
	return c, nil
}

// AddCategory rejects names that already exist, ignoring case.
func (uc *CatalogUseCase) AddCategory(ctx context.Context, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("Category name is required")
	}

	categories, err := uc.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return nil, &DomainError{Code: CodeConflict, Message: "Category already exists"}
		}
	}

	c := entity.Category{ID: uuid.NewString(), Name: name, CreatedAt: uc.now()}
	if err := uc.Categories.ReplaceAll(ctx, append(categories, c)); err != nil {
		return nil, storageError("save categories", err)
	}
	return &c, nil
}

func (uc *CatalogUseCase) ListCharacters(ctx context.Context) ([]entity.Character, error) {
	c, err := uc.Characters.List(ctx)
	if err != nil {
		return nil, storageError("read characters", err)
	}
	return c, nil
}

func (uc *CatalogUseCase) AddCharacter(ctx context.Context, name, category string) (*entity.Character, error) {
	if name == "" || category == "" {
		return nil, validationError("Name and category are required")
	}

	characters, err := uc.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	c := entity.Character{ID: uuid.NewString(), Name: name, Category: category, CreatedAt: uc.now()}
	if err := uc.Characters.ReplaceAll(ctx, append(characters, c)); err != nil {
		return nil, storageError("save characters", err)
	}
	return &c, nil
}
