package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/mapcheck/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func putKV(ctx context.Context, tx db.DBTX, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv_store (key, value, updated_at) VALUES (?, ?, '2025-01-01T00:00:00Z')`,
		key, value)
	return err
}

// readKV reads a value in its own transaction.
func readKV(uow *db.SQLiteUnitOfWork, key string) (string, bool) {
	var val string
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&val); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return val, found
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := newTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return putKV(ctx, tx, "k1", `{"1-1":true}`)
	})
	require.NoError(t, err)

	val, found := readKV(uow, "k1")
	assert.True(t, found, "row should exist after commit")
	assert.Equal(t, `{"1-1":true}`, val)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := newTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := putKV(ctx, tx, "k2", "{}"); err != nil {
			return err
		}
		return errors.New("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	_, found := readKV(uow, "k2")
	assert.False(t, found, "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := newTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = putKV(ctx, tx, "k3", "{}")
			panic("boom")
		})
	})

	_, found := readKV(uow, "k3")
	assert.False(t, found, "row should not exist after panic rollback")
}
