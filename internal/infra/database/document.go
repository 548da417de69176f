package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/xavierca1/leadreach/internal/logging"
)

// Document is one JSON resource in a BlobStore with a read cache of its
// encoded form. Every Load decodes a fresh value, so callers may mutate it.
type Document[T any] struct {
	store BlobStore
	key   string
	empty func() T

	mu     sync.RWMutex
	cached []byte
}

// NewDocument binds key in store. empty supplies the value for a missing or unreadable blob.
func NewDocument[T any](store BlobStore, key string, empty func() T) *Document[T] {
	return &Document[T]{store: store, key: key, empty: empty}
}

func (d *Document[T]) Load(ctx context.Context) (T, error) {
	raw, err := d.raw(ctx)
	if errors.Is(err, ErrBlobNotFound) {
		return d.empty(), nil
	}
	if err != nil {
		var zero T
		return zero, err
	}

	v := d.empty()
	if err := json.Unmarshal(raw, &v); err != nil {
		logging.Warn().Err(err).Str("key", d.key).Msg("stored document is not valid JSON, using empty value")
		return d.empty(), nil
	}
	return v, nil
}

func (d *Document[T]) Store(ctx context.Context, v T) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.key, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.Put(ctx, d.key, raw); err != nil {
		d.cached = nil
		return err
	}
	d.cached = raw
	return nil
}

func (d *Document[T]) raw(ctx context.Context) ([]byte, error) {
	d.mu.RLock()
	cached := d.cached
	d.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	raw, err := d.store.Get(ctx, d.key)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.cached = raw
	d.mu.Unlock()
	return raw, nil
}
