// Package checklist holds the pure derivations over a catalog: which
// sections and items are visible under the current filters, and how much
// of the visible checklist is complete. Rendering and progress both go
// through the same helpers so the two never disagree about visibility.
package checklist

import (
	"strings"

	"github.com/alexanderramin/mapcheck/internal/domain"
)

// SectionVisible reports whether a section is shown for the selected
// project type. "both" shows every section.
func SectionVisible(s *domain.Section, pt domain.ProjectType) bool {
	if pt == domain.ProjectBoth {
		return true
	}
	return s.AppliesTo(pt)
}

// ItemVisible reports whether an item matches the search term. The match is
// a case-insensitive substring test on the item text; a whitespace-only
// term is matched literally.
func ItemVisible(it *domain.Item, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Text), strings.ToLower(term))
}

// VisibleSections returns pointers into phase.Sections for every section
// shown under pt, in catalog order.
func VisibleSections(phase *domain.Phase, pt domain.ProjectType) []*domain.Section {
	var out []*domain.Section
	for i := range phase.Sections {
		if SectionVisible(&phase.Sections[i], pt) {
			out = append(out, &phase.Sections[i])
		}
	}
	return out
}

// VisibleItems returns pointers into section.Items for every item matching term.
func VisibleItems(section *domain.Section, term string) []*domain.Item {
	var out []*domain.Item
	for i := range section.Items {
		if ItemVisible(&section.Items[i], term) {
			out = append(out, &section.Items[i])
		}
	}
	return out
}

// VisiblePhases returns the phases that still have at least one visible
// section under pt. The search term does not hide phases: a phase whose
// items are all filtered out keeps its header, as the page does.
func VisiblePhases(c *domain.Catalog, pt domain.ProjectType) []*domain.Phase {
	var out []*domain.Phase
	for i := range c.Phases {
		if len(VisibleSections(&c.Phases[i], pt)) > 0 {
			out = append(out, &c.Phases[i])
		}
	}
	return out
}

// Walk calls fn for every visible item, in catalog order.
func Walk(c *domain.Catalog, pt domain.ProjectType, term string, fn func(p *domain.Phase, s *domain.Section, it *domain.Item)) {
	for pi := range c.Phases {
		p := &c.Phases[pi]
		for _, s := range VisibleSections(p, pt) {
			for _, it := range VisibleItems(s, term) {
				fn(p, s, it)
			}
		}
	}
}
