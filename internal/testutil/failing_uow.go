package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/mapcheck/internal/db"
	"github.com/alexanderramin/mapcheck/internal/domain"
)

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call within a transaction. This enables rollback integration tests by
// simulating failures at precise points in multi-write operations.
//
// ExecContext calls are counted starting at 1. QueryContext and QueryRowContext
// are not counted (reads pass through normally).
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, failOn: u.FailOn, err: u.Err}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.count.Add(1)
	if n == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// FlakyStorage is an in-memory key/value store whose reads and writes can be
// made to fail. It satisfies persistence.Storage.
type FlakyStorage struct {
	Values   map[string]string
	GetErr   error
	PutErr   error
	PutCalls int
}

// NewFlakyStorage returns an empty FlakyStorage.
func NewFlakyStorage() *FlakyStorage {
	return &FlakyStorage{Values: make(map[string]string)}
}

func (s *FlakyStorage) Get(_ context.Context, key string) (string, error) {
	if s.GetErr != nil {
		return "", s.GetErr
	}
	v, ok := s.Values[key]
	if !ok {
		return "", fmt.Errorf("key %q: %w", key, domain.ErrNotFound)
	}
	return v, nil
}

func (s *FlakyStorage) Put(_ context.Context, key, value string) error {
	s.PutCalls++
	if s.PutErr != nil {
		return s.PutErr
	}
	s.Values[key] = value
	return nil
}
