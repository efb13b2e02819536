package store

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mapcheck/internal/domain"
)

// LoadFunc produces a decoded snapshot. It runs off the caller's goroutine.
type LoadFunc func(ctx context.Context) (*domain.Snapshot, error)

// CommitFunc makes an accepted snapshot durable before it becomes visible.
// It runs while the store is locked; an error discards the snapshot.
type CommitFunc func(ctx context.Context, snap *domain.Snapshot) error

// ImportOutcome is delivered exactly once per ImportAsync call.
type ImportOutcome struct {
	Snapshot *domain.Snapshot
	// Applied is true when the snapshot replaced the store state.
	Applied bool
	// Superseded is true when a later import was already applied, so this
	// one was dropped without error.
	Superseded bool
	Err        error
}

// ImportAsync loads a snapshot in the background and, on success, replaces
// the project type and the whole checked state with it. The outcome is sent
// once on the returned channel, which is then closed.
//
// Concurrent imports resolve last-write-wins by request order: an import
// that completes after a later-requested one was applied is dropped. On any
// error the store is left untouched. commit may be nil.
func (s *Store) ImportAsync(ctx context.Context, load LoadFunc, commit CommitFunc) <-chan ImportOutcome {
	s.mu.Lock()
	s.issued++
	ticket := s.issued
	s.mu.Unlock()

	out := make(chan ImportOutcome, 1)
	go func() {
		defer close(out)
		out <- s.runImport(ctx, ticket, load, commit)
	}()
	return out
}

func (s *Store) runImport(ctx context.Context, ticket uint64, load LoadFunc, commit CommitFunc) ImportOutcome {
	snap, err := load(ctx)
	if err != nil {
		return ImportOutcome{Err: err}
	}
	if snap == nil {
		return ImportOutcome{Err: fmt.Errorf("import produced no snapshot")}
	}
	if err := ctx.Err(); err != nil {
		return ImportOutcome{Snapshot: snap, Err: err}
	}
	if !snap.ProjectType.Valid() {
		return ImportOutcome{Snapshot: snap, Err: fmt.Errorf("%w: %q", domain.ErrInvalidProjectType, snap.ProjectType)}
	}

	s.act.Lock()
	defer s.act.Unlock()

	s.mu.Lock()
	stale := ticket < s.applied
	s.mu.Unlock()
	if stale {
		return ImportOutcome{Snapshot: snap, Superseded: true}
	}

	persisted := false
	if commit != nil {
		if err := commit(ctx, snap); err != nil {
			return ImportOutcome{Snapshot: snap, Err: err}
		}
		persisted = true
	}

	s.mu.Lock()
	s.applied = ticket
	c := s.replaceLocked(snap.ProjectType, snap.CheckedItems, persisted)
	s.mu.Unlock()

	s.notify(c)
	return ImportOutcome{Snapshot: snap, Applied: true}
}
