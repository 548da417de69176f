package database

import (
	"context"
	"time"

	"github.com/xavierca1/leadreach/internal/entity"
)

// Repositories groups every resource repository over one store.
type Repositories struct {
	Leads      *LeadRepository
	Messages   *MessageRepository
	Categories *CategoryRepository
	Characters *CharacterRepository
	Analytics  *AnalyticsRepository
	LastSearch *LastSearchRepository
	RateLimit  *RateLimitRepository
}

func NewRepositories(store BlobStore) *Repositories {
	return &Repositories{
		Leads:      NewLeadRepository(store),
		Messages:   NewMessageRepository(store),
		Categories: NewCategoryRepository(store),
		Characters: NewCharacterRepository(store),
		Analytics:  NewAnalyticsRepository(store),
		LastSearch: NewLastSearchRepository(store),
		RateLimit:  NewRateLimitRepository(store),
	}
}

type LeadRepository struct {
	doc *Document[[]entity.Lead]
}

func NewLeadRepository(store BlobStore) *LeadRepository {
	return &LeadRepository{doc: NewDocument(store, KeyLeads, func() []entity.Lead { return []entity.Lead{} })}
}

func (r *LeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	return r.doc.Load(ctx)
}

func (r *LeadRepository) ReplaceAll(ctx context.Context, leads []entity.Lead) error {
	return r.doc.Store(ctx, leads)
}

type MessageRepository struct {
	doc *Document[[]entity.MessageTemplateSet]
}

func NewMessageRepository(store BlobStore) *MessageRepository {
	return &MessageRepository{doc: NewDocument(store, KeyMessages, func() []entity.MessageTemplateSet { return []entity.MessageTemplateSet{} })}
}

func (r *MessageRepository) List(ctx context.Context) ([]entity.MessageTemplateSet, error) {
	return r.doc.Load(ctx)
}

func (r *MessageRepository) ReplaceAll(ctx context.Context, sets []entity.MessageTemplateSet) error {
	return r.doc.Store(ctx, sets)
}

type CategoryRepository struct {
	doc *Document[[]entity.Category]
}

func NewCategoryRepository(store BlobStore) *CategoryRepository {
	return &CategoryRepository{doc: NewDocument(store, KeyCategories, func() []entity.Category { return []entity.Category{} })}
}

func (r *CategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	return r.doc.Load(ctx)
}

func (r *CategoryRepository) ReplaceAll(ctx context.Context, categories []entity.Category) error {
	return r.doc.Store(ctx, categories)
}

type CharacterRepository struct {
	doc *Document[[]entity.Character]
}

func NewCharacterRepository(store BlobStore) *CharacterRepository {
	return &CharacterRepository{doc: NewDocument(store, KeyCharacters, func() []entity.Character { return []entity.Character{} })}
}

func (r *CharacterRepository) List(ctx context.Context) ([]entity.Character, error) {
	return r.doc.Load(ctx)
}

func (r *CharacterRepository) ReplaceAll(ctx context.Context, characters []entity.Character) error {
	return r.doc.Store(ctx, characters)
}

type AnalyticsRepository struct {
	doc *Document[entity.Analytics]
}

func NewAnalyticsRepository(store BlobStore) *AnalyticsRepository {
	return &AnalyticsRepository{doc: NewDocument(store, KeyAnalytics, func() entity.Analytics {
		return entity.Analytics{LastUpdated: time.Now()}
	})}
}

func (r *AnalyticsRepository) Get(ctx context.Context) (entity.Analytics, error) {
	return r.doc.Load(ctx)
}

func (r *AnalyticsRepository) Save(ctx context.Context, a entity.Analytics) error {
	return r.doc.Store(ctx, a)
}

type LastSearchRepository struct {
	doc *Document[entity.LastSearch]
}

func NewLastSearchRepository(store BlobStore) *LastSearchRepository {
	return &LastSearchRepository{doc: NewDocument(store, KeyLastSearch, func() entity.LastSearch { return entity.LastSearch{} })}
}

func (r *LastSearchRepository) Get(ctx context.Context) (entity.LastSearch, error) {
	return r.doc.Load(ctx)
}

func (r *LastSearchRepository) Save(ctx context.Context, s entity.LastSearch) error {
	return r.doc.Store(ctx, s)
}

type RateLimitRepository struct {
	doc *Document[entity.RateLimitWindow]
}

func NewRateLimitRepository(store BlobStore) *RateLimitRepository {
	return &RateLimitRepository{doc: NewDocument(store, KeyRateLimit, func() entity.RateLimitWindow { return entity.RateLimitWindow{} })}
}

func (r *RateLimitRepository) Load(ctx context.Context) (entity.RateLimitWindow, error) {
	return r.doc.Load(ctx)
}

func (r *RateLimitRepository) Save(ctx context.Context, w entity.RateLimitWindow) error {
	return r.doc.Store(ctx, w)
}

var (
	_ entity.LeadRepository       = (*LeadRepository)(nil)
	_ entity.MessageRepository    = (*MessageRepository)(nil)
	_ entity.CategoryRepository   = (*CategoryRepository)(nil)
	_ entity.CharacterRepository  = (*CharacterRepository)(nil)
	_ entity.AnalyticsRepository  = (*AnalyticsRepository)(nil)
	_ entity.LastSearchRepository = (*LastSearchRepository)(nil)
	_ entity.RateLimitRepository  = (*RateLimitRepository)(nil)
)
