package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/mapcheck/internal/checklist"
	"github.com/alexanderramin/mapcheck/internal/domain"
)

const statusProgressBarWidth = 20

// SectionView is a visible section with its visible items.
type SectionView struct {
	Section *domain.Section
	Items   []*domain.Item
}

// PhaseView is a visible phase. Sections is empty when the phase is
// collapsed.
type PhaseView struct {
	Phase    *domain.Phase
	Tally    checklist.Tally
	Expanded bool
	Sections []SectionView
}

// ChecklistView is everything needed to print the checklist once.
type ChecklistView struct {
	Title       string
	ProjectType domain.ProjectType
	SearchTerm  string
	Percent     int
	Phases      []PhaseView
	Checked     domain.CheckedState
}

// FormatFilters renders the active project type and search term.
func FormatFilters(pt domain.ProjectType, term string) string {
	line := Dim("Type: ") + ProjectTypeLabel(pt)
	if term != "" {
		line += Dim("   Search: ") + StyleYellow.Render(fmt.Sprintf("%q", term))
	}
	return line
}

// FormatList renders the filtered checklist as a tree.
func FormatList(v ChecklistView) string {
	var b strings.Builder
	b.WriteString(Header(v.Title) + "\n")
	b.WriteString(FormatFilters(v.ProjectType, v.SearchTerm) + "\n")
	b.WriteString(Dim("Progress: ") + RenderProgress(v.Percent, statusProgressBarWidth) + "\n\n")

	if len(v.Phases) == 0 {
		b.WriteString(Dim("No phases apply to this project type.") + "\n")
		return b.String()
	}

	var items []TreeItem
	for _, p := range v.Phases {
		items = append(items, TreeItem{
			Title:  p.Phase.Title,
			Detail: RenderFraction(p.Tally.Checked, p.Tally.Total),
		})
		for si, s := range p.Sections {
			items = append(items, TreeItem{
				Title:  s.Section.Title,
				Level:  1,
				IsLast: si == len(p.Sections)-1,
				Detail: SectionBadge(s.Section),
			})
			for ii, it := range s.Items {
				items = append(items, TreeItem{
					Title:    StyleBlue.Render(it.ID) + "  " + it.Text,
					Level:    2,
					IsLast:   ii == len(s.Items)-1,
					Checkbox: true,
					Checked:  v.Checked[it.ID],
					Required: it.Required,
				})
			}
		}
	}
	b.WriteString(RenderTree(items))
	return b.String()
}

// FormatStatus renders overall and per-phase progress plus the required
// items still open.
func FormatStatus(title string, pt domain.ProjectType, term string, sum checklist.Summary) string {
	var b strings.Builder
	b.WriteString(Header(title) + "\n")
	b.WriteString(FormatFilters(pt, term) + "\n\n")
	b.WriteString(Bold("Overall  ") + RenderProgress(sum.Overall.Percent(), statusProgressBarWidth) +
		"  " + RenderFraction(sum.Overall.Checked, sum.Overall.Total) + "\n\n")

	if len(sum.Phases) > 0 {
		rows := make([][]string, 0, len(sum.Phases))
		for _, p := range sum.Phases {
			rows = append(rows, []string{
				p.Phase.Title,
				RenderProgress(p.Percent(), 10),
				RenderFraction(p.Checked, p.Total),
			})
		}
		b.WriteString(RenderTable([]string{"PHASE", "PROGRESS", "DONE"}, rows))
		b.WriteString("\n")
	}

	if len(sum.RequiredOutstanding) == 0 {
		b.WriteString(StyleGreen.Render("✔ All required items complete") + "\n")
		return b.String()
	}
	b.WriteString(StyleRed.Render(fmt.Sprintf("Required items outstanding (%d):", len(sum.RequiredOutstanding))) + "\n")
	for _, it := range sum.RequiredOutstanding {
		b.WriteString("  " + RequiredMark() + " " + StyleBlue.Render(it.ID) + "  " + it.Text + "\n")
	}
	return b.String()
}

// FormatToggle reports the new state of an item.
func FormatToggle(it *domain.Item, checked bool) string {
	state := Dim("unchecked")
	if checked {
		state = StyleGreen.Render("checked")
	}
	return fmt.Sprintf("%s %s  %s  %s\n", Checkbox(checked), StyleBlue.Render(it.ID), it.Text, state)
}

// FormatResources lists the reference links.
func FormatResources(resources []domain.Resource) string {
	if len(resources) == 0 {
		return Dim("No resources.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Header("Important Resources") + "\n")
	for _, r := range resources {
		b.WriteString("  " + Bold(r.Title) + "\n")
		if r.Description != "" {
			b.WriteString("    " + r.Description + "\n")
		}
		b.WriteString("    " + StyleBlue.Render(r.URL) + "\n")
	}
	return b.String()
}

// FormatHistory renders snapshot records newest first.
func FormatHistory(records []*domain.SnapshotRecord, now time.Time) string {
	if len(records) == 0 {
		return Dim("No exports or imports yet.") + "\n"
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		kind := StyleGreen.Render(string(r.Kind))
		if r.Kind == domain.SnapshotImport {
			kind = StylePurple.Render(string(r.Kind))
		}
		source := r.Source
		if source == "" {
			source = Dim("stream")
		}
		rows = append(rows, []string{
			TruncID(r.ID),
			kind,
			string(r.ProjectType),
			fmt.Sprintf("%d", r.CheckedCount),
			Truncate(source, 48),
			RelativeDateFrom(r.CreatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "KIND", "TYPE", "CHECKED", "SOURCE", "WHEN"}, rows)
}

// FormatImport summarizes an applied snapshot and any defaults used.
func FormatImport(snap *domain.Snapshot) string {
	var b strings.Builder
	b.WriteString(StyleGreen.Render("✔ Progress imported") + "\n")
	b.WriteString("  " + FormatFilters(snap.ProjectType, "") + "\n")
	b.WriteString(fmt.Sprintf("  %s %d\n", Dim("Checked items:"), snap.CheckedItems.CountTrue()))
	if snap.ExportDate != nil {
		b.WriteString(fmt.Sprintf("  %s %s\n", Dim("Exported:"), snap.ExportDate.UTC().Format(time.RFC3339)))
	}
	for _, w := range snap.Warnings {
		b.WriteString("  " + StyleYellow.Render("! "+w) + "\n")
	}
	return b.String()
}
