package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// SectionBadge renders the variant badge of a single-variant section, or
// "" for sections shared by both variants.
func SectionBadge(s *domain.Section) string {
	switch badge := s.Badge(); badge {
	case "":
		return ""
	case "MAP Only":
		return StylePurple.Render("[" + badge + "]")
	default:
		return StyleGreen.Render("[" + badge + "]")
	}
}

// Checkbox renders a checked or empty box.
func Checkbox(checked bool) string {
	if checked {
		return StyleGreen.Render("[✔]")
	}
	return StyleDim.Render("[ ]")
}

// RequiredMark flags a required item.
func RequiredMark() string {
	return StyleRed.Render("★")
}

// ProjectTypeLabel renders the selector value with its description.
func ProjectTypeLabel(pt domain.ProjectType) string {
	return StyleBlue.Render(string(pt)) + Dim(" ("+pt.Label()+")")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
