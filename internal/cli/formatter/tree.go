package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a checklist tree. Level 0 lines are headings;
// deeper lines get box-drawing connectors.
type TreeItem struct {
	Title    string
	Level    int
	IsLast   bool
	Checkbox bool // render a checkbox before the title
	Checked  bool
	Required bool
	Detail   string // rendered right-aligned, already styled
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders items as an indented tree. Checked items are dimmed
// and details are right-aligned across the whole tree.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	maxWidth := 0
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		switch {
		case item.Level == 0:
			title = Bold(title)
		case item.Checked:
			title = Dim(title)
		}
		if item.Required {
			title += " " + RequiredMark()
		}

		line := StyleDim.Render(prefix)
		if item.Checkbox {
			line += Checkbox(item.Checked) + " "
		}
		line += title
		contents[idx] = line

		if item.Detail != "" {
			if w := lipgloss.Width(line); w > maxWidth {
				maxWidth = w
			}
		}
	}

	var b strings.Builder
	for idx, item := range items {
		b.WriteString(contents[idx])
		if item.Detail != "" {
			pad := maxWidth - lipgloss.Width(contents[idx])
			if pad < 0 {
				pad = 0
			}
			b.WriteString(strings.Repeat(" ", pad) + "  " + item.Detail)
		}
		b.WriteString("\n")
	}
	return b.String()
}
