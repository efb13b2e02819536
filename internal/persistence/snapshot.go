package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/mapcheck/internal/domain"
)

// DefaultExportName is the file name exports are written to by default.
const DefaultExportName = "map-checklist-progress.json"

// ExportDateLayout is ISO-8601 in UTC with millisecond precision.
const ExportDateLayout = "2006-01-02T15:04:05.000Z07:00"

type exportDocument struct {
	ProjectType  domain.ProjectType  `json:"projectType"`
	CheckedItems domain.CheckedState `json:"checkedItems"`
	ExportDate   string              `json:"exportDate"`
}

// ExportSnapshot writes the snapshot document for pt and checked, stamped
// with now. Output is indented with two spaces.
func ExportSnapshot(w io.Writer, pt domain.ProjectType, checked domain.CheckedState, now time.Time) error {
	if !pt.Valid() {
		return fmt.Errorf("exporting snapshot: %w: %q", domain.ErrInvalidProjectType, pt)
	}
	if checked == nil {
		checked = domain.NewCheckedState()
	}
	doc := exportDocument{
		ProjectType:  pt,
		CheckedItems: checked,
		ExportDate:   now.UTC().Format(ExportDateLayout),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// ImportSnapshot decodes a snapshot document. Anything that is not a JSON
// object fails with *ImportParseError. Inside an object every field is
// optional: a missing or invalid projectType becomes "both", a missing or
// non-object checkedItems becomes empty, and non-boolean entries are
// dropped. Item IDs are not checked against any catalog.
func ImportSnapshot(r io.Reader) (*domain.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading progress file: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ImportParseError{Err: err}
	}
	if fields == nil {
		return nil, &ImportParseError{Err: errors.New("document is null, expected an object")}
	}

	snap := &domain.Snapshot{
		ProjectType:  domain.ProjectBoth,
		CheckedItems: domain.NewCheckedState(),
	}
	snap.ProjectType = decodeProjectType(fields["projectType"], snap)
	decodeCheckedItems(fields["checkedItems"], snap)
	snap.ExportDate = decodeExportDate(fields["exportDate"], snap)
	return snap, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeProjectType(raw json.RawMessage, snap *domain.Snapshot) domain.ProjectType {
	if isAbsent(raw) {
		return domain.ProjectBoth
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		snap.Warnings = append(snap.Warnings, "projectType is not a string; using both")
		return domain.ProjectBoth
	}
	// Exact match only: the file format has no case or space folding.
	pt := domain.ProjectType(s)
	if !pt.Valid() {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("projectType %q is not recognised; using both", s))
		return domain.ProjectBoth
	}
	return pt
}

func decodeCheckedItems(raw json.RawMessage, snap *domain.Snapshot) {
	if isAbsent(raw) {
		return
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		snap.Warnings = append(snap.Warnings, "checkedItems is not an object; starting empty")
		return
	}
	for id, v := range entries {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil || isAbsent(v) {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("checkedItems[%q] is not a boolean; dropped", id))
			continue
		}
		snap.CheckedItems[id] = b
	}
}

func decodeExportDate(raw json.RawMessage, snap *domain.Snapshot) *time.Time {
	if isAbsent(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		snap.Warnings = append(snap.Warnings, "exportDate is not a string; ignored")
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("exportDate %q is not ISO-8601; ignored", s))
		return nil
	}
	return &t
}
