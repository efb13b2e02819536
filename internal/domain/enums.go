package domain

import (
	"fmt"
	"strings"
)

// ProjectType selects which program variant the checklist is filtered for.
// Sections carry the concrete variants (map, map-lite) as applicability tags;
// ProjectBoth is a selector only.
type ProjectType string

const (
	ProjectBoth    ProjectType = "both"
	ProjectMAP     ProjectType = "map"
	ProjectMAPLite ProjectType = "map-lite"
)

// ProjectTypes lists the selector values in display order.
var ProjectTypes = []ProjectType{ProjectBoth, ProjectMAP, ProjectMAPLite}

// ValidApplicability is the canonical set of tags a section may carry.
var ValidApplicability = map[ProjectType]bool{
	ProjectMAP:     true,
	ProjectMAPLite: true,
}

// ParseProjectType validates a selector value. Input is trimmed and
// lower-cased; anything outside the three selectors is a configuration error.
func ParseProjectType(s string) (ProjectType, error) {
	pt := ProjectType(strings.ToLower(strings.TrimSpace(s)))
	if !pt.Valid() {
		return "", fmt.Errorf("%w: %q (want both, map or map-lite)", ErrInvalidProjectType, s)
	}
	return pt, nil
}

// Valid reports whether pt is one of the three selector values.
func (pt ProjectType) Valid() bool {
	switch pt {
	case ProjectBoth, ProjectMAP, ProjectMAPLite:
		return true
	}
	return false
}

// Next cycles through ProjectTypes, wrapping around.
func (pt ProjectType) Next() ProjectType {
	for i, t := range ProjectTypes {
		if t == pt {
			return ProjectTypes[(i+1)%len(ProjectTypes)]
		}
	}
	return ProjectBoth
}

// Label is the human description shown next to the type selector.
func (pt ProjectType) Label() string {
	switch pt {
	case ProjectMAP:
		return "MAP Only ($500K-$10M)"
	case ProjectMAPLite:
		return "MAP Lite ($100K-$500K)"
	default:
		return "All Items"
	}
}

func (pt ProjectType) String() string { return string(pt) }
