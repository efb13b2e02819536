package checklist

import "github.com/alexanderramin/mapcheck/internal/domain"

// Tally counts visible items and how many of them are checked.
type Tally struct {
	Checked int
	Total   int
}

// Percent rounds 100*Checked/Total half-up to an integer in [0,100].
// An empty tally is 0%.
func (t Tally) Percent() int {
	if t.Total <= 0 {
		return 0
	}
	return (200*t.Checked + t.Total) / (2 * t.Total)
}

// ComputeProgress returns the completion percentage over the items visible
// under pt and term. Checked IDs that are hidden or unknown do not count.
func ComputeProgress(c *domain.Catalog, checked domain.CheckedState, pt domain.ProjectType, term string) int {
	var t Tally
	Walk(c, pt, term, func(_ *domain.Phase, _ *domain.Section, it *domain.Item) {
		t.add(checked[it.ID])
	})
	return t.Percent()
}

// PhaseProgress tallies a single phase under the same filters.
func PhaseProgress(p *domain.Phase, checked domain.CheckedState, pt domain.ProjectType, term string) Tally {
	var t Tally
	for _, s := range VisibleSections(p, pt) {
		for _, it := range VisibleItems(s, term) {
			t.add(checked[it.ID])
		}
	}
	return t
}

// PhaseTally pairs a phase with its tally.
type PhaseTally struct {
	Phase *domain.Phase
	Tally
}

// Summary is the overall and per-phase progress plus the required items
// that are visible and still open.
type Summary struct {
	Overall             Tally
	Phases              []PhaseTally
	RequiredOutstanding []*domain.Item
}

// Summarize computes a Summary in one pass over the visible items.
func Summarize(c *domain.Catalog, checked domain.CheckedState, pt domain.ProjectType, term string) Summary {
	var sum Summary
	for _, p := range VisiblePhases(c, pt) {
		ph := PhaseTally{Phase: p, Tally: PhaseProgress(p, checked, pt, term)}
		sum.Overall.Checked += ph.Checked
		sum.Overall.Total += ph.Total
		sum.Phases = append(sum.Phases, ph)
	}
	Walk(c, pt, term, func(_ *domain.Phase, _ *domain.Section, it *domain.Item) {
		if it.Required && !checked[it.ID] {
			sum.RequiredOutstanding = append(sum.RequiredOutstanding, it)
		}
	})
	return sum
}
