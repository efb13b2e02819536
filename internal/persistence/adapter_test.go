package persistence

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/repository"
	"github.com/alexanderramin/mapcheck/internal/store"
	"github.com/alexanderramin/mapcheck/internal/testutil"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingKeyIsEmpty(t *testing.T) {
	a := NewAdapter(testutil.NewFlakyStorage())

	got, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoad_MalformedValueRecoversWithWarning(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	storage.Values[StorageKey] = "{not json"
	a := NewAdapter(storage)

	got, err := a.Load(context.Background())
	assert.Empty(t, got)
	assert.NotNil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageRead)

	var readErr *StorageReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, StorageKey, readErr.Key)
}

func TestLoad_NullValueIsEmpty(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	storage.Values[StorageKey] = "null"

	got, err := NewAdapter(storage).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestLoad_StorageFailureRecovers(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	storage.GetErr = errors.New("database is locked")

	got, err := NewAdapter(storage).Load(context.Background())
	assert.Empty(t, got)
	assert.ErrorIs(t, err, domain.ErrStorageRead)
}

func TestSaveThenLoad(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	a := NewAdapter(storage)
	ctx := context.Background()

	state := domain.CheckedState{"1-1": true, "1-2": false, "stale-id": true}
	require.NoError(t, a.Save(ctx, state))
	assert.JSONEq(t, `{"1-1":true,"1-2":false,"stale-id":true}`, storage.Values[StorageKey])

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestSave_OverwritesFully(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	a := NewAdapter(storage)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, domain.CheckedState{"1-1": true}))
	require.NoError(t, a.Save(ctx, domain.CheckedState{"6-3": true}))
	assert.JSONEq(t, `{"6-3":true}`, storage.Values[StorageKey])

	require.NoError(t, a.Save(ctx, nil))
	assert.Equal(t, "{}", storage.Values[StorageKey])
}

func TestSave_WriteFailure(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	storage.PutErr = errors.New("quota exceeded")

	err := NewAdapter(storage).Save(context.Background(), domain.CheckedState{"1-1": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageWrite)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestWithKey(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	a := NewAdapter(storage, WithKey("custom"))
	require.NoError(t, a.Save(context.Background(), domain.CheckedState{"a": true}))

	assert.Equal(t, "custom", a.Key())
	assert.Contains(t, storage.Values, "custom")
	assert.Equal(t, StorageKey, NewAdapter(storage, WithKey("")).Key())
}

func TestAdapter_OverSQLite(t *testing.T) {
	a := NewAdapter(repository.NewSQLiteKVRepo(testutil.NewTestDB(t)))
	ctx := context.Background()

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, a.Save(ctx, domain.CheckedState{"2-1": true}))
	got, err = a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckedState{"2-1": true}, got)
}

func TestMirror_SavesOnEveryCheckedChange(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	a := NewAdapter(storage)
	s := store.New(testutil.NewScenarioCatalog(), nil)
	s.Subscribe(a.Mirror(context.Background(), nil))

	s.ToggleItem("1-1")
	assert.Equal(t, 1, storage.PutCalls)
	assert.JSONEq(t, `{"1-1":true}`, storage.Values[StorageKey])

	s.ToggleItem("1-1")
	assert.Equal(t, 2, storage.PutCalls)
	assert.JSONEq(t, `{"1-1":false}`, storage.Values[StorageKey])

	// View changes are not persisted.
	s.TogglePhase("phase-1")
	s.SetSearchTerm("x")
	require.NoError(t, s.SetProjectType(domain.ProjectMAP))
	assert.Equal(t, 2, storage.PutCalls)

	require.NoError(t, s.ReplaceAll(domain.ProjectBoth, domain.CheckedState{"6-3": true}))
	assert.Equal(t, 3, storage.PutCalls)
	assert.JSONEq(t, `{"6-3":true}`, storage.Values[StorageKey])
}

func TestMirror_SkipsPersistedReplacement(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	mirror := NewAdapter(storage).Mirror(context.Background(), nil)

	mirror(store.Change{Kind: store.ChangeReplaced, Checked: domain.CheckedState{}, Persisted: true})
	assert.Equal(t, 0, storage.PutCalls)
}

func TestMirror_WriteFailureIsWarningOnly(t *testing.T) {
	storage := testutil.NewFlakyStorage()
	storage.PutErr = errors.New("quota exceeded")

	var buf bytes.Buffer
	logger := log.New(&buf)
	s := store.New(testutil.NewScenarioCatalog(), nil)
	s.Subscribe(NewAdapter(storage).Mirror(context.Background(), logger))

	assert.NotPanics(t, func() { s.ToggleItem("1-1") })
	assert.True(t, s.IsChecked("1-1"), "memory state stays correct")
	assert.Contains(t, buf.String(), "progress not saved")
	assert.Contains(t, buf.String(), "quota exceeded")
}
