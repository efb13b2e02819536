package repository

import (
	"context"

	"github.com/alexanderramin/mapcheck/internal/domain"
)

// KVRepo is a string key/value store with whole-value overwrite semantics.
type KVRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SnapshotLogRepo records export and import events.
type SnapshotLogRepo interface {
	Create(ctx context.Context, r *domain.SnapshotRecord) error
	ListRecent(ctx context.Context, limit int) ([]*domain.SnapshotRecord, error)
}
