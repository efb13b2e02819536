package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/mapcheck/internal/checklist"
	"github.com/alexanderramin/mapcheck/internal/db"
	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/persistence"
	"github.com/alexanderramin/mapcheck/internal/repository"
	"github.com/alexanderramin/mapcheck/internal/store"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type checklistService struct {
	catalog   *domain.Catalog
	store     *store.Store
	snapshots repository.SnapshotLogRepo
	uow       db.UnitOfWork

	storageKey string
	exportDir  string
	now        func() time.Time
	logger     *log.Logger
	observer   UseCaseObserver
}

// Option configures the checklist service.
type Option func(*checklistService)

// WithClock overrides time.Now for export stamps and history records.
func WithClock(now func() time.Time) Option {
	return func(s *checklistService) { s.now = now }
}

// WithLogger sets the logger that receives import and history warnings.
func WithLogger(logger *log.Logger) Option {
	return func(s *checklistService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the use-case observer.
func WithObserver(o UseCaseObserver) Option {
	return func(s *checklistService) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithExportDir sets the directory ExportFile writes to when given no path.
func WithExportDir(dir string) Option {
	return func(s *checklistService) { s.exportDir = dir }
}

// WithStorageKey overrides the key imports are committed under. It must
// match the key of the adapter mirroring the store.
func WithStorageKey(key string) Option {
	return func(s *checklistService) {
		if key != "" {
			s.storageKey = key
		}
	}
}

// NewChecklistService wires the checklist use cases. snapshots and uow may
// be nil, in which case imports are not committed to storage and no history
// is kept.
func NewChecklistService(
	c *domain.Catalog,
	st *store.Store,
	snapshots repository.SnapshotLogRepo,
	uow db.UnitOfWork,
	opts ...Option,
) Checklist {
	s := &checklistService{
		catalog:    c,
		store:      st,
		snapshots:  snapshots,
		uow:        uow,
		storageKey: persistence.StorageKey,
		exportDir:  ".",
		now:        time.Now,
		logger:     log.New(io.Discard),
		observer:   NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *checklistService) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

func (s *checklistService) Catalog() *domain.Catalog     { return s.catalog }
func (s *checklistService) View() store.ViewState        { return s.store.View() }
func (s *checklistService) Checked() domain.CheckedState { return s.store.Checked() }

func (s *checklistService) VisiblePhases() []*domain.Phase {
	return checklist.VisiblePhases(s.catalog, s.store.ProjectType())
}

func (s *checklistService) VisibleSections(p *domain.Phase) []*domain.Section {
	return checklist.VisibleSections(p, s.store.ProjectType())
}

func (s *checklistService) VisibleItems(sec *domain.Section) []*domain.Item {
	return checklist.VisibleItems(sec, s.store.SearchTerm())
}

func (s *checklistService) IsChecked(itemID string) bool {
	return s.store.IsChecked(itemID)
}

func (s *checklistService) ProgressPercent() int {
	v := s.store.View()
	return checklist.ComputeProgress(s.catalog, s.store.Checked(), v.ProjectType, v.SearchTerm)
}

func (s *checklistService) Summary() checklist.Summary {
	v := s.store.View()
	return checklist.Summarize(s.catalog, s.store.Checked(), v.ProjectType, v.SearchTerm)
}

func (s *checklistService) Resources() []domain.Resource {
	return s.catalog.Resources
}

// ToggleItem flips an item. IDs missing from the catalog are rejected so a
// typo on the command line cannot plant a stray key in storage.
func (s *checklistService) ToggleItem(ctx context.Context, itemID string) (checked bool, err error) {
	startedAt := time.Now()
	fields := map[string]any{"item": itemID}
	defer func() {
		s.observe(ctx, "toggle-item", startedAt, fields, err)
	}()

	if _, ok := s.catalog.Item(itemID); !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownItem, itemID)
	}
	checked = s.store.ToggleItem(itemID)
	fields["checked"] = checked
	return checked, nil
}

func (s *checklistService) TogglePhase(phaseID string) bool {
	return s.store.TogglePhase(phaseID)
}

func (s *checklistService) SetProjectType(pt domain.ProjectType) (err error) {
	startedAt := time.Now()
	defer func() {
		s.observe(context.Background(), "set-project-type", startedAt, map[string]any{"project_type": string(pt)}, err)
	}()
	return s.store.SetProjectType(pt)
}

func (s *checklistService) SetSearchTerm(term string) {
	s.store.SetSearchTerm(term)
}

// ResetProgress unchecks every item and removes the saved progress. The
// project type and view flags are kept.
func (s *checklistService) ResetProgress(ctx context.Context) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"cleared": s.store.Checked().CountTrue()}
	defer func() {
		s.observe(ctx, "reset-progress", startedAt, fields, err)
	}()

	var commit func(context.Context) error
	if s.uow != nil {
		commit = func(ctx context.Context) error {
			return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
				err := repository.NewSQLiteKVRepo(tx).Delete(ctx, s.storageKey)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("clearing saved progress: %w", err)
				}
				return nil
			})
		}
	}
	return s.store.ClearChecked(ctx, commit)
}

// ExportSnapshot writes the current project type and checked state and
// records the export in history.
func (s *checklistService) ExportSnapshot(ctx context.Context, w io.Writer) error {
	return s.export(ctx, w, "")
}

// ExportFile writes a snapshot to path. An empty path, or a path naming a
// directory, gets the default export file name. It returns the path written.
func (s *checklistService) ExportFile(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = s.exportDir
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, persistence.DefaultExportName)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := s.export(ctx, f, path); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

func (s *checklistService) export(ctx context.Context, w io.Writer, source string) (err error) {
	startedAt := time.Now()
	pt, checked := s.store.ProjectType(), s.store.Checked()
	fields := map[string]any{
		"project_type":  string(pt),
		"checked_count": checked.CountTrue(),
	}
	defer func() {
		s.observe(ctx, "export-snapshot", startedAt, fields, err)
	}()

	now := s.now()
	if err = persistence.ExportSnapshot(w, pt, checked, now); err != nil {
		return err
	}

	if s.snapshots != nil {
		rec := &domain.SnapshotRecord{
			ID:           uuid.NewString(),
			Kind:         domain.SnapshotExport,
			ProjectType:  pt,
			CheckedCount: checked.CountTrue(),
			Source:       source,
			CreatedAt:    now.UTC(),
		}
		if herr := s.snapshots.Create(ctx, rec); herr != nil {
			s.logger.Warn("export not recorded in history", "err", herr)
		}
	}
	return nil
}

// ImportSnapshot decodes r and applies it, waiting for the result. A parse
// failure leaves the state untouched and is returned as is.
func (s *checklistService) ImportSnapshot(ctx context.Context, r io.Reader) (store.ImportOutcome, error) {
	load := func(context.Context) (*domain.Snapshot, error) {
		return persistence.ImportSnapshot(r)
	}
	outcome := <-s.importAsync(ctx, "", load)
	return outcome, outcome.Err
}

// ImportFileAsync reads and applies the snapshot at path in the background.
// The single outcome arrives on the returned channel.
func (s *checklistService) ImportFileAsync(ctx context.Context, path string) <-chan store.ImportOutcome {
	load := func(context.Context) (*domain.Snapshot, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening progress file: %w", err)
		}
		defer f.Close()
		return persistence.ImportSnapshot(f)
	}
	return s.importAsync(ctx, path, load)
}

func (s *checklistService) importAsync(ctx context.Context, source string, load store.LoadFunc) <-chan store.ImportOutcome {
	startedAt := time.Now()
	var commit store.CommitFunc
	if s.uow != nil {
		commit = s.commitImport(source)
	}

	pending := s.store.ImportAsync(ctx, load, commit)
	out := make(chan store.ImportOutcome, 1)
	go func() {
		defer close(out)
		outcome := <-pending
		s.reportImport(ctx, source, startedAt, outcome)
		out <- outcome
	}()
	return out
}

// commitImport saves the imported state and its history record in one
// transaction, so the store only changes once both are durable.
func (s *checklistService) commitImport(source string) store.CommitFunc {
	return func(ctx context.Context, snap *domain.Snapshot) error {
		rec := &domain.SnapshotRecord{
			ID:           uuid.NewString(),
			Kind:         domain.SnapshotImport,
			ProjectType:  snap.ProjectType,
			CheckedCount: snap.CheckedItems.CountTrue(),
			Source:       source,
			CreatedAt:    s.now().UTC(),
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			adapter := persistence.NewAdapter(repository.NewSQLiteKVRepo(tx), persistence.WithKey(s.storageKey))
			if err := adapter.Save(ctx, snap.CheckedItems); err != nil {
				return fmt.Errorf("saving imported progress: %w", err)
			}
			if err := repository.NewSQLiteSnapshotLogRepo(tx).Create(ctx, rec); err != nil {
				return fmt.Errorf("recording import: %w", err)
			}
			return nil
		})
	}
}

func (s *checklistService) reportImport(ctx context.Context, source string, startedAt time.Time, outcome store.ImportOutcome) {
	fields := map[string]any{
		"applied":    outcome.Applied,
		"superseded": outcome.Superseded,
	}
	if source != "" {
		fields["source"] = source
	}
	if snap := outcome.Snapshot; snap != nil {
		fields["project_type"] = string(snap.ProjectType)
		fields["checked_count"] = snap.CheckedItems.CountTrue()
		for _, w := range snap.Warnings {
			s.logger.Warn("import default applied", "detail", w)
		}
	}
	if outcome.Superseded {
		s.logger.Warn("import superseded by a later import", "source", source)
	}
	s.observe(ctx, "import-snapshot", startedAt, fields, outcome.Err)
}

// History returns recent exports and imports, newest first.
func (s *checklistService) History(ctx context.Context, limit int) ([]*domain.SnapshotRecord, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	records, err := s.snapshots.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot history: %w", err)
	}
	return records, nil
}

