package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/google/uuid"
)

// Item options
type ItemOption func(*domain.Item)

func WithRequired() ItemOption {
	return func(it *domain.Item) {
		it.Required = true
	}
}

func WithTooltip(s string) ItemOption {
	return func(it *domain.Item) {
		it.Tooltip = s
	}
}

func WithLink(text, url string) ItemOption {
	return func(it *domain.Item) {
		it.Links = append(it.Links, domain.Link{Text: text, URL: url})
	}
}

func NewTestItem(id, text string, opts ...ItemOption) domain.Item {
	it := domain.Item{ID: id, Text: text}
	for _, opt := range opts {
		opt(&it)
	}
	return it
}

func NewTestSection(title string, applicability []domain.ProjectType, items ...domain.Item) domain.Section {
	return domain.Section{Title: title, Applicability: applicability, Items: items}
}

// Common applicability sets.
var (
	Both    = []domain.ProjectType{domain.ProjectMAP, domain.ProjectMAPLite}
	MAPOnly = []domain.ProjectType{domain.ProjectMAP}
	Lite    = []domain.ProjectType{domain.ProjectMAPLite}
)

// NewScenarioCatalog builds the six-item catalog the progress scenarios
// are written against:
//
//	phase-1 / Shared   (map, map-lite): 1-1, 1-2
//	phase-1 / MAP Only (map):           1-4, 1-5
//	phase-6 / Sign-off (map, map-lite): 6-1, 6-3
func NewScenarioCatalog() *domain.Catalog {
	c := &domain.Catalog{
		Metadata: domain.Metadata{Title: "Test Checklist", Version: "1.0", LastUpdated: "2024-01-15"},
		Resources: []domain.Resource{
			{Title: "MAP Terms & Conditions", URL: "https://example.com/terms", Description: "Official program terms"},
		},
		Phases: []domain.Phase{
			{ID: "phase-1", Title: "Phase 1: Project Initiation", Sections: []domain.Section{
				NewTestSection("Both MAP & MAP Lite", Both,
					NewTestItem("1-1", "Determine migration eligibility for MAP funding"),
					NewTestItem("1-2", "Confirm partner eligibility requirements are met"),
				),
				NewTestSection("MAP Only ($500K-$10M ARR)", MAPOnly,
					NewTestItem("1-4", "Complete Migration Readiness Assessment (MRA)", WithRequired()),
					NewTestItem("1-5", "Obtain customer consent for MAP migration tagging"),
				),
			}},
			{ID: "phase-6", Title: "Phase 6: Project Closeout", Sections: []domain.Section{
				NewTestSection("Customer Sign-off Process", Both,
					NewTestItem("6-1", "Download MAP Customer Sign-off Template"),
					NewTestItem("6-3", "Obtain customer signature", WithTooltip("Wet or electronic signature")),
				),
			}},
		},
	}
	c.Index()
	return c
}

// NewLargeCatalog builds a catalog of phases*sections*items entries with
// alternating applicability. IDs have the form "p-s-i".
func NewLargeCatalog(phases, sections, items int) *domain.Catalog {
	c := &domain.Catalog{}
	for p := 0; p < phases; p++ {
		phase := domain.Phase{ID: fmt.Sprintf("phase-%d", p), Title: fmt.Sprintf("Phase %d", p)}
		for s := 0; s < sections; s++ {
			app := Both
			switch s % 3 {
			case 1:
				app = MAPOnly
			case 2:
				app = Lite
			}
			sec := domain.Section{Title: fmt.Sprintf("Section %d.%d", p, s), Applicability: app}
			for i := 0; i < items; i++ {
				sec.Items = append(sec.Items, NewTestItem(fmt.Sprintf("%d-%d-%d", p, s, i), fmt.Sprintf("Task %d of section %d.%d", i, p, s)))
			}
			phase.Sections = append(phase.Sections, sec)
		}
		c.Phases = append(c.Phases, phase)
	}
	c.Index()
	return c
}

// Snapshot record options
type RecordOption func(*domain.SnapshotRecord)

func WithRecordKind(k domain.SnapshotKind) RecordOption {
	return func(r *domain.SnapshotRecord) {
		r.Kind = k
	}
}

func WithRecordTime(t time.Time) RecordOption {
	return func(r *domain.SnapshotRecord) {
		r.CreatedAt = t
	}
}

func NewTestSnapshotRecord(opts ...RecordOption) *domain.SnapshotRecord {
	r := &domain.SnapshotRecord{
		ID:           uuid.New().String(),
		Kind:         domain.SnapshotExport,
		ProjectType:  domain.ProjectBoth,
		CheckedCount: 0,
		Source:       "test.json",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
