package domain

import "time"

// Snapshot is the decoded form of an exported progress file.
type Snapshot struct {
	ProjectType  ProjectType
	CheckedItems CheckedState
	ExportDate   *time.Time
	// Warnings lists the defaults applied while decoding, one per field.
	Warnings []string
}

// SnapshotKind distinguishes history entries.
type SnapshotKind string

const (
	SnapshotExport SnapshotKind = "export"
	SnapshotImport SnapshotKind = "import"
)

// SnapshotRecord is one entry in the local export/import history.
type SnapshotRecord struct {
	ID           string
	Kind         SnapshotKind
	ProjectType  ProjectType
	CheckedCount int
	Source       string
	CreatedAt    time.Time
}
