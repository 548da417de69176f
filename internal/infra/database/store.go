// Package database persists each resource as one JSON blob under a fixed key.
// The blob engine is pluggable; repositories only see BlobStore.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/leadreach/internal/config"
)

// Resource keys. The file driver stores them as <key>.json.
const (
	KeyLeads      = "leads"
	KeyCategories = "category"
	KeyCharacters = "characters"
	KeyMessages   = "messages"
	KeyAnalytics  = "analytics"
	KeyLastSearch = "lastSearchResults"
	KeyRateLimit  = "rateLimit"
)

var ErrBlobNotFound = errors.New("blob not found")

type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "badger":
		return NewBadgerStore(cfg.Path)
	case "postgres":
		db, err := NewDBConnection("postgres", cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, DialectPostgres)
	case "sqlite":
		db, err := NewDBConnection("sqlite3", sqlitePath(cfg.Path))
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, DialectSQLite)
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
