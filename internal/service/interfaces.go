package service

import (
	"context"
	"io"

	"github.com/alexanderramin/mapcheck/internal/checklist"
	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/store"
)

// Checklist is everything a front end needs: derived views, mutations and
// snapshot transfer. Implementations are safe for concurrent use.
type Checklist interface {
	Catalog() *domain.Catalog
	View() store.ViewState
	Checked() domain.CheckedState

	VisiblePhases() []*domain.Phase
	VisibleSections(p *domain.Phase) []*domain.Section
	VisibleItems(s *domain.Section) []*domain.Item
	IsChecked(itemID string) bool
	ProgressPercent() int
	Summary() checklist.Summary
	Resources() []domain.Resource

	ToggleItem(ctx context.Context, itemID string) (bool, error)
	TogglePhase(phaseID string) bool
	SetProjectType(pt domain.ProjectType) error
	SetSearchTerm(term string)
	ResetProgress(ctx context.Context) error

	ExportSnapshot(ctx context.Context, w io.Writer) error
	ExportFile(ctx context.Context, path string) (string, error)
	ImportSnapshot(ctx context.Context, r io.Reader) (store.ImportOutcome, error)
	ImportFileAsync(ctx context.Context, path string) <-chan store.ImportOutcome
	History(ctx context.Context, limit int) ([]*domain.SnapshotRecord, error)
}
