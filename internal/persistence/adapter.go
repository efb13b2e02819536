// Package persistence mirrors checked state to local key/value storage and
// converts it to and from the exported snapshot file format.
//
// The two formats are deliberately different: storage holds only the
// checked-items map under StorageKey, while a snapshot also carries the
// project type and export time.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/store"
	"github.com/charmbracelet/log"
)

// StorageKey is the key the checked-items map is stored under.
const StorageKey = "mapChecklistProgress"

// Storage is the key/value backend. Get returns an error wrapping
// domain.ErrNotFound for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

// Adapter loads and saves checked state under a single key.
type Adapter struct {
	storage Storage
	key     string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey overrides StorageKey.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// NewAdapter creates an Adapter over the given storage.
func NewAdapter(storage Storage, opts ...Option) *Adapter {
	a := &Adapter{storage: storage, key: StorageKey}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the storage key in use.
func (a *Adapter) Key() string { return a.key }

// Load reads the stored checked state. A missing key yields an empty state
// and no error. Unreadable or malformed content also yields an empty state,
// together with a *StorageReadError the caller should log and otherwise
// ignore.
func (a *Adapter) Load(ctx context.Context) (domain.CheckedState, error) {
	raw, err := a.storage.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewCheckedState(), nil
		}
		return domain.NewCheckedState(), &StorageReadError{Key: a.key, Err: err}
	}

	var checked domain.CheckedState
	if err := json.Unmarshal([]byte(raw), &checked); err != nil {
		return domain.NewCheckedState(), &StorageReadError{Key: a.key, Err: fmt.Errorf("decoding stored value: %w", err)}
	}
	if checked == nil {
		checked = domain.NewCheckedState()
	}
	return checked, nil
}

// Save overwrites the stored value with the full checked map.
func (a *Adapter) Save(ctx context.Context, checked domain.CheckedState) error {
	if checked == nil {
		checked = domain.NewCheckedState()
	}
	data, err := json.Marshal(checked)
	if err != nil {
		return &StorageWriteError{Key: a.key, Err: fmt.Errorf("encoding checked state: %w", err)}
	}
	if err := a.storage.Put(ctx, a.key, string(data)); err != nil {
		return &StorageWriteError{Key: a.key, Err: err}
	}
	return nil
}

// Mirror returns a store subscriber that saves after every change to the
// checked state. Write failures are logged as warnings and never
// propagate; view-only changes and already-persisted replacements are
// skipped.
func (a *Adapter) Mirror(ctx context.Context, logger *log.Logger) store.Subscriber {
	return func(c store.Change) {
		if !c.TouchesChecked() || c.Persisted {
			return
		}
		if err := a.Save(ctx, c.Checked); err != nil && logger != nil {
			logger.Warn("progress not saved", "key", a.key, "err", err)
		}
	}
}
