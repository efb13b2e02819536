package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/persistence"
	"github.com/alexanderramin/mapcheck/internal/repository"
	"github.com/alexanderramin/mapcheck/internal/store"
	"github.com/alexanderramin/mapcheck/internal/testutil"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc       Checklist
	store     *store.Store
	db        *sql.DB
	kv        *repository.SQLiteKVRepo
	snapshots *repository.SQLiteSnapshotLogRepo
	logs      *bytes.Buffer
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	kv := repository.NewSQLiteKVRepo(database)
	snapshots := repository.NewSQLiteSnapshotLogRepo(database)
	c := testutil.NewScenarioCatalog()

	var logs bytes.Buffer
	logger := log.New(&logs)

	st := store.New(c, nil)
	st.Subscribe(persistence.NewAdapter(kv).Mirror(context.Background(), logger))

	base := []Option{WithClock(func() time.Time { return fixedNow }), WithLogger(logger)}
	svc := NewChecklistService(c, st, snapshots, testutil.NewTestUoW(database), append(base, opts...)...)
	return &harness{svc: svc, store: st, db: database, kv: kv, snapshots: snapshots, logs: &logs}
}

func (h *harness) stored(t *testing.T) domain.CheckedState {
	t.Helper()
	got, err := persistence.NewAdapter(h.kv).Load(context.Background())
	require.NoError(t, err)
	return got
}

func TestToggleItem_PersistsThroughMirror(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	checked, err := h.svc.ToggleItem(ctx, "1-1")
	require.NoError(t, err)
	assert.True(t, checked)
	assert.True(t, h.svc.IsChecked("1-1"))
	assert.Equal(t, domain.CheckedState{"1-1": true}, h.stored(t))

	checked, err = h.svc.ToggleItem(ctx, "1-1")
	require.NoError(t, err)
	assert.False(t, checked)
	assert.Equal(t, domain.CheckedState{"1-1": false}, h.stored(t))
}

func TestToggleItem_UnknownIDRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.ToggleItem(context.Background(), "9-9")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownItem)
	assert.Empty(t, h.svc.Checked())

	_, err = h.kv.Get(context.Background(), persistence.StorageKey)
	assert.ErrorIs(t, err, repository.ErrNotFound, "nothing written")
}

func TestProgressPercent_FollowsFilters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.ToggleItem(ctx, "1-1")
	require.NoError(t, err)

	assert.Equal(t, 17, h.svc.ProgressPercent(), "1 of 6")

	require.NoError(t, h.svc.SetProjectType(domain.ProjectMAPLite))
	assert.Equal(t, 25, h.svc.ProgressPercent(), "1 of 4")

	h.svc.SetSearchTerm("sign")
	assert.Equal(t, 0, h.svc.ProgressPercent(), "0 of 2")

	_, err = h.svc.ToggleItem(ctx, "6-3")
	require.NoError(t, err)
	assert.Equal(t, 50, h.svc.ProgressPercent())
}

func TestSetProjectType_InvalidKeepsPrevious(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.SetProjectType(domain.ProjectMAP))

	err := h.svc.SetProjectType("enterprise")
	assert.ErrorIs(t, err, domain.ErrInvalidProjectType)
	assert.Equal(t, domain.ProjectMAP, h.svc.View().ProjectType)
}

func TestVisibleTree(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.SetProjectType(domain.ProjectMAPLite))

	phases := h.svc.VisiblePhases()
	require.Len(t, phases, 2)

	sections := h.svc.VisibleSections(phases[0])
	require.Len(t, sections, 1, "MAP-only section hidden")
	assert.Equal(t, "Both MAP & MAP Lite", sections[0].Title)

	h.svc.SetSearchTerm("PARTNER")
	items := h.svc.VisibleItems(sections[0])
	require.Len(t, items, 1)
	assert.Equal(t, "1-2", items[0].ID)
}

func TestTogglePhase_ViewOnly(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.svc.View().IsExpanded("phase-1"))
	assert.False(t, h.svc.TogglePhase("phase-1"))
	assert.False(t, h.svc.View().IsExpanded("phase-1"))

	_, err := h.kv.Get(context.Background(), persistence.StorageKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSummary(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.SetProjectType(domain.ProjectMAP))

	sum := h.svc.Summary()
	require.Len(t, sum.RequiredOutstanding, 1)
	assert.Equal(t, "1-4", sum.RequiredOutstanding[0].ID)

	_, err := h.svc.ToggleItem(context.Background(), "1-4")
	require.NoError(t, err)
	sum = h.svc.Summary()
	assert.Empty(t, sum.RequiredOutstanding)
	assert.Equal(t, 1, sum.Overall.Checked)
	assert.Equal(t, 6, sum.Overall.Total)
	require.Len(t, sum.Phases, 2)
	assert.Equal(t, 4, sum.Phases[0].Total)
}

func TestResources(t *testing.T) {
	h := newHarness(t)
	res := h.svc.Resources()
	require.Len(t, res, 1)
	assert.Equal(t, "MAP Terms & Conditions", res[0].Title)
	assert.Same(t, h.svc.Catalog(), h.svc.Catalog())
}

func TestExportSnapshot_WritesAndRecords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.ToggleItem(ctx, "1-1")
	require.NoError(t, err)
	require.NoError(t, h.svc.SetProjectType(domain.ProjectMAP))

	var buf bytes.Buffer
	require.NoError(t, h.svc.ExportSnapshot(ctx, &buf))
	assert.JSONEq(t, `{
		"projectType": "map",
		"checkedItems": {"1-1": true},
		"exportDate": "2025-06-01T12:00:00.000Z"
	}`, buf.String())

	history, err := h.svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.SnapshotExport, history[0].Kind)
	assert.Equal(t, domain.ProjectMAP, history[0].ProjectType)
	assert.Equal(t, 1, history[0].CheckedCount)
	assert.True(t, fixedNow.Equal(history[0].CreatedAt))
}

func TestExportFile_DefaultName(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, WithExportDir(dir))

	path, err := h.svc.ExportFile(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, persistence.DefaultExportName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"projectType": "both"`)

	history, err := h.svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, path, history[0].Source)
}

func TestExportFile_ExplicitPathAndDirectory(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	explicit := filepath.Join(dir, "backup.json")
	path, err := h.svc.ExportFile(context.Background(), explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)

	path, err = h.svc.ExportFile(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, persistence.DefaultExportName), path)

	_, err = h.svc.ExportFile(context.Background(), filepath.Join(dir, "missing", "x.json"))
	assert.Error(t, err)
}

func TestImportSnapshot_ReplacesStateAndCommits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.ToggleItem(ctx, "1-2")
	require.NoError(t, err)

	outcome, err := h.svc.ImportSnapshot(ctx, strings.NewReader(
		`{"projectType":"map-lite","checkedItems":{"1-1":true,"6-3":true}}`))
	require.NoError(t, err)
	assert.True(t, outcome.Applied)

	assert.Equal(t, domain.ProjectMAPLite, h.svc.View().ProjectType)
	assert.Equal(t, domain.CheckedState{"1-1": true, "6-3": true}, h.svc.Checked(), "no merge with prior state")
	assert.Equal(t, domain.CheckedState{"1-1": true, "6-3": true}, h.stored(t))

	history, err := h.svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.SnapshotImport, history[0].Kind)
	assert.Equal(t, domain.ProjectMAPLite, history[0].ProjectType)
	assert.Equal(t, 2, history[0].CheckedCount)
}

func TestImportSnapshot_InvalidJSONLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.ToggleItem(ctx, "1-1")
	require.NoError(t, err)
	require.NoError(t, h.svc.SetProjectType(domain.ProjectMAP))

	_, err = h.svc.ImportSnapshot(ctx, strings.NewReader("{not valid json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrImportParse)

	assert.Equal(t, domain.CheckedState{"1-1": true}, h.svc.Checked())
	assert.Equal(t, domain.ProjectMAP, h.svc.View().ProjectType)
	assert.Equal(t, domain.CheckedState{"1-1": true}, h.stored(t))

	history, err := h.svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestImportSnapshot_UnknownIDsKept(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.svc.ImportSnapshot(context.Background(), strings.NewReader(`{"checkedItems":{"unknown-id":true}}`))
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, domain.ProjectBoth, h.svc.View().ProjectType)
	assert.True(t, h.svc.IsChecked("unknown-id"))
	assert.Equal(t, 0, h.svc.ProgressPercent())
}

func TestImportSnapshot_WarningsLogged(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.ImportSnapshot(context.Background(), strings.NewReader(`{"projectType":"enterprise"}`))
	require.NoError(t, err)
	assert.Contains(t, h.logs.String(), "import default applied")
	assert.Contains(t, h.logs.String(), "enterprise")
}

func TestImportSnapshot_RollbackOnHistoryFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	kv := repository.NewSQLiteKVRepo(database)
	c := testutil.NewScenarioCatalog()
	st := store.New(c, nil)
	st.Subscribe(persistence.NewAdapter(kv).Mirror(context.Background(), nil))

	// ExecContext #1 = kv_store upsert, #2 = snapshot_log insert
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     database,
		FailOn: 2,
		Err:    fmt.Errorf("injected history failure"),
	}
	svc := NewChecklistService(c, st, repository.NewSQLiteSnapshotLogRepo(database), failUoW)
	ctx := context.Background()

	_, err := svc.ToggleItem(ctx, "1-1")
	require.NoError(t, err)

	_, err = svc.ImportSnapshot(ctx, strings.NewReader(`{"projectType":"map","checkedItems":{"6-1":true}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected history failure")

	assert.Equal(t, domain.CheckedState{"1-1": true}, svc.Checked(), "store untouched")
	assert.Equal(t, domain.ProjectBoth, svc.View().ProjectType)

	stored, err := persistence.NewAdapter(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckedState{"1-1": true}, stored, "kv write rolled back")
}

func TestImportFileAsync(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, persistence.ExportSnapshot(&buf, domain.ProjectMAP, domain.CheckedState{"1-4": true}, fixedNow))
	path := filepath.Join(t.TempDir(), persistence.DefaultExportName)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	outcome := <-h.svc.ImportFileAsync(ctx, path)
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, domain.ProjectMAP, h.svc.View().ProjectType)
	assert.True(t, h.svc.IsChecked("1-4"))

	history, err := h.svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, path, history[0].Source)
}

func TestImportFileAsync_MissingFile(t *testing.T) {
	h := newHarness(t)

	outcome := <-h.svc.ImportFileAsync(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, os.ErrNotExist)
	assert.False(t, outcome.Applied)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newHarness(t)
	ctx := context.Background()
	for _, id := range []string{"1-1", "1-4", "6-3"} {
		_, err := src.svc.ToggleItem(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, src.svc.SetProjectType(domain.ProjectMAP))

	var buf bytes.Buffer
	require.NoError(t, src.svc.ExportSnapshot(ctx, &buf))

	dst := newHarness(t)
	_, err := dst.svc.ImportSnapshot(ctx, &buf)
	require.NoError(t, err)

	assert.Equal(t, src.svc.Checked(), dst.svc.Checked())
	assert.Equal(t, src.svc.View().ProjectType, dst.svc.View().ProjectType)
	assert.Equal(t, src.svc.ProgressPercent(), dst.svc.ProgressPercent())
}

func TestResetProgress_ClearsStoreAndStorage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.SetProjectType(domain.ProjectMAP))
	_, err := h.svc.ToggleItem(ctx, "1-1")
	require.NoError(t, err)
	_, err = h.svc.ToggleItem(ctx, "6-1")
	require.NoError(t, err)

	require.NoError(t, h.svc.ResetProgress(ctx))

	assert.Empty(t, h.svc.Checked())
	assert.Equal(t, 0, h.svc.ProgressPercent())
	assert.Equal(t, domain.ProjectMAP, h.svc.View().ProjectType)

	_, err = h.kv.Get(ctx, persistence.StorageKey)
	assert.ErrorIs(t, err, repository.ErrNotFound, "saved progress removed")
	assert.Empty(t, h.stored(t))
}

func TestResetProgress_NothingSaved(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.svc.ResetProgress(context.Background()))
	assert.Empty(t, h.svc.Checked())
}

func TestResetProgress_DeleteFailureKeepsState(t *testing.T) {
	database := testutil.NewTestDB(t)
	kv := repository.NewSQLiteKVRepo(database)
	c := testutil.NewScenarioCatalog()
	st := store.New(c, nil)
	st.Subscribe(persistence.NewAdapter(kv).Mirror(context.Background(), nil))

	failUoW := &testutil.FailOnNthExecUoW{
		DB:     database,
		FailOn: 1,
		Err:    fmt.Errorf("injected delete failure"),
	}
	svc := NewChecklistService(c, st, nil, failUoW)
	ctx := context.Background()

	_, err := svc.ToggleItem(ctx, "1-1")
	require.NoError(t, err)

	err = svc.ResetProgress(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected delete failure")
	assert.True(t, svc.IsChecked("1-1"))

	stored, err := persistence.NewAdapter(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckedState{"1-1": true}, stored)
}

func TestHistory_WithoutRepo(t *testing.T) {
	c := testutil.NewScenarioCatalog()
	svc := NewChecklistService(c, store.New(c, nil), nil, nil)

	history, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, history)

	outcome, err := svc.ImportSnapshot(context.Background(), strings.NewReader(`{"checkedItems":{"1-1":true}}`))
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.True(t, svc.IsChecked("1-1"))
}
