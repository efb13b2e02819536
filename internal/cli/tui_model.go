package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/mapcheck/internal/checklist"
	"github.com/alexanderramin/mapcheck/internal/cli/formatter"
	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/service"
	"github.com/alexanderramin/mapcheck/internal/store"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// chromeLines is the number of lines around the row list: header, filters,
// progress, blank, detail (2), status and help.
const chromeLines = 8

type rowKind int

const (
	rowPhase rowKind = iota
	rowSection
	rowItem
)

type tuiRow struct {
	kind     rowKind
	phase    *domain.Phase
	section  *domain.Section
	item     *domain.Item
	tally    checklist.Tally
	expanded bool
}

func (r tuiRow) selectable() bool { return r.kind != rowSection }

// key identifies the row across rebuilds so the cursor can follow it.
func (r tuiRow) key() string {
	switch r.kind {
	case rowPhase:
		return "p:" + r.phase.ID
	case rowItem:
		return "i:" + r.item.ID
	default:
		return ""
	}
}

type exportDoneMsg struct {
	path string
	err  error
}

type importRequestedMsg struct {
	path string
}

type importDoneMsg struct {
	path    string
	outcome store.ImportOutcome
}

// checklistModel is the interactive checklist. All state lives in the
// service; the model only keeps cursor and input state.
type checklistModel struct {
	ctx  context.Context
	svc  service.Checklist
	keys keyMap
	help help.Model

	rows   []tuiRow
	cursor int
	offset int
	width  int
	height int

	search    textinput.Model
	searching bool

	form       *huh.Form
	importPath *string

	busy      string
	status    string
	statusErr bool
}

func newChecklistModel(ctx context.Context, app *App) *checklistModel {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search items..."
	search.CharLimit = 100

	m := &checklistModel{
		ctx:    ctx,
		svc:    app.Checklist,
		keys:   defaultKeyMap(),
		help:   help.New(),
		search: search,
	}
	m.refresh()
	return m
}

func (m *checklistModel) Init() tea.Cmd {
	return tea.SetWindowTitle(catalogTitle(m.svc))
}

func (m *checklistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-4, 10)
		m.ensureVisible()
		return m, nil
	case exportDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError("Export failed: " + msg.err.Error())
		} else {
			m.setStatus("Progress exported to " + msg.path)
		}
		return m, nil
	case importRequestedMsg:
		return m, m.startImport(msg.path)
	case importDoneMsg:
		m.busy = ""
		m.reportImport(msg)
		m.refresh()
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if m.searching {
		return m.updateSearch(keyMsg)
	}
	return m.updateBrowse(keyMsg)
}

func (m *checklistModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.jump(-m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.jump(m.listHeight())
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Expand):
		m.activate()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.svc.View().SearchTerm)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Type):
		next := m.svc.View().ProjectType.Next()
		if err := m.svc.SetProjectType(next); err != nil {
			m.setError(err.Error())
		} else {
			m.setStatus("Project type: " + next.Label())
		}
		m.refresh()
	case key.Matches(msg, m.keys.Export):
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Exporting..."
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.Import):
		if m.busy != "" {
			return m, nil
		}
		path := ""
		m.importPath = &path
		m.form = newImportForm(m.importPath)
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *checklistModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.svc.SetSearchTerm("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if term := m.search.Value(); term != m.svc.View().SearchTerm {
		m.svc.SetSearchTerm(term)
		m.refresh()
	}
	return m, cmd
}

func (m *checklistModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		m.setStatus("Import cancelled.")
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		path := strings.TrimSpace(*m.importPath)
		m.form = nil
		return m, func() tea.Msg { return importRequestedMsg{path: path} }
	case huh.StateAborted:
		m.form = nil
		m.setStatus("Import cancelled.")
		return m, nil
	}
	return m, cmd
}

// activate toggles the item under the cursor, or expands or collapses the
// phase under it.
func (m *checklistModel) activate() {
	r, ok := m.current()
	if !ok {
		return
	}
	switch r.kind {
	case rowPhase:
		m.svc.TogglePhase(r.phase.ID)
	case rowItem:
		if _, err := m.svc.ToggleItem(m.ctx, r.item.ID); err != nil {
			m.setError(err.Error())
		}
	}
	m.refresh()
}

func (m *checklistModel) exportCmd() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		path, err := svc.ExportFile(ctx, "")
		return exportDoneMsg{path: path, err: err}
	}
}

func (m *checklistModel) startImport(path string) tea.Cmd {
	m.busy = "Importing " + path + "..."
	pending := m.svc.ImportFileAsync(m.ctx, path)
	return func() tea.Msg {
		return importDoneMsg{path: path, outcome: <-pending}
	}
}

func (m *checklistModel) reportImport(msg importDoneMsg) {
	o := msg.outcome
	switch {
	case errors.Is(o.Err, domain.ErrImportParse):
		m.setError("Invalid progress file. Progress left unchanged.")
	case o.Err != nil:
		m.setError("Import failed: " + o.Err.Error())
	case o.Superseded:
		m.setStatus("Import of " + msg.path + " skipped: a newer import was applied.")
	default:
		s := fmt.Sprintf("Imported %d checked items (%s)", o.Snapshot.CheckedItems.CountTrue(), o.Snapshot.ProjectType.Label())
		if n := len(o.Snapshot.Warnings); n > 0 {
			s += fmt.Sprintf(", %d defaults applied", n)
		}
		m.setStatus(s)
	}
}

func (m *checklistModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *checklistModel) setError(s string) {
	m.status, m.statusErr = s, true
}

// ── rows and cursor ──────────────────────────────────────────────────────────

func (m *checklistModel) refresh() {
	prev := ""
	if r, ok := m.current(); ok {
		prev = r.key()
	}

	view := m.svc.View()
	sum := m.svc.Summary()
	tallies := make(map[string]checklist.Tally, len(sum.Phases))
	for _, p := range sum.Phases {
		tallies[p.Phase.ID] = p.Tally
	}

	rows := make([]tuiRow, 0, len(m.rows))
	for _, p := range m.svc.VisiblePhases() {
		expanded := view.IsExpanded(p.ID)
		rows = append(rows, tuiRow{kind: rowPhase, phase: p, tally: tallies[p.ID], expanded: expanded})
		if !expanded {
			continue
		}
		for _, s := range m.svc.VisibleSections(p) {
			rows = append(rows, tuiRow{kind: rowSection, phase: p, section: s})
			for _, it := range m.svc.VisibleItems(s) {
				rows = append(rows, tuiRow{kind: rowItem, phase: p, section: s, item: it})
			}
		}
	}
	m.rows = rows

	for i, r := range m.rows {
		if prev != "" && r.key() == prev {
			m.cursor = i
			m.ensureVisible()
			return
		}
	}
	m.cursor = m.nearestSelectable(min(m.cursor, len(m.rows)-1))
	m.ensureVisible()
}

func (m *checklistModel) current() (tuiRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return tuiRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m *checklistModel) move(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.rows); i += delta {
		if m.rows[i].selectable() {
			m.cursor = i
			break
		}
	}
	m.ensureVisible()
}

func (m *checklistModel) jump(delta int) {
	target := max(0, min(m.cursor+delta, len(m.rows)-1))
	m.cursor = m.nearestSelectable(target)
	m.ensureVisible()
}

// nearestSelectable returns i if selectable, else the next selectable row
// after it, else the previous one before it.
func (m *checklistModel) nearestSelectable(i int) int {
	if i < 0 {
		return 0
	}
	for j := i; j < len(m.rows); j++ {
		if m.rows[j].selectable() {
			return j
		}
	}
	for j := i - 1; j >= 0; j-- {
		if m.rows[j].selectable() {
			return j
		}
	}
	return 0
}

func (m *checklistModel) listHeight() int {
	if m.height == 0 {
		return max(len(m.rows), 1)
	}
	extra := 0
	if m.searching {
		extra = 1
	}
	return max(m.height-chromeLines-extra, 3)
}

func (m *checklistModel) ensureVisible() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(0, min(m.offset, len(m.rows)-h))
}

// ── rendering ────────────────────────────────────────────────────────────────

func (m *checklistModel) View() string {
	var b strings.Builder

	view := m.svc.View()
	b.WriteString(formatter.Header(catalogTitle(m.svc)) + "\n")
	b.WriteString(formatter.FormatFilters(view.ProjectType, view.SearchTerm) + "\n")
	b.WriteString(formatter.Dim("Progress: ") + formatter.RenderProgress(m.svc.ProgressPercent(), 20) + "\n")
	if m.searching {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString("\n")

	if m.form != nil {
		b.WriteString(m.form.View() + "\n\n")
		b.WriteString(formatter.Dim("enter: import  esc: cancel"))
		return b.String()
	}

	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("No phases apply to this project type.") + "\n")
	}
	end := min(m.offset+m.listHeight(), len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor) + "\n")
	}

	b.WriteString(m.renderDetail())
	b.WriteString(m.renderStatus() + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

var cursorStyle = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)

func (m *checklistModel) renderRow(r tuiRow, selected bool) string {
	marker := "  "
	if selected {
		marker = cursorStyle.Render("›") + " "
	}

	switch r.kind {
	case rowPhase:
		arrow := "▸"
		if r.expanded {
			arrow = "▾"
		}
		return marker + arrow + " " + formatter.Bold(r.phase.Title) + "  " +
			formatter.RenderFraction(r.tally.Checked, r.tally.Total)
	case rowSection:
		line := marker + "  " + formatter.StyleYellow.Render(r.section.Title)
		if badge := formatter.SectionBadge(r.section); badge != "" {
			line += " " + badge
		}
		return line
	default:
		checked := m.svc.IsChecked(r.item.ID)
		text := r.item.Text
		if checked {
			text = formatter.Dim(text)
		}
		line := marker + "    " + formatter.Checkbox(checked) + " " + formatter.StyleBlue.Render(r.item.ID) + "  " + text
		if r.item.Required {
			line += " " + formatter.RequiredMark()
		}
		return line
	}
}

// renderDetail shows the tooltip and links of the item under the cursor.
func (m *checklistModel) renderDetail() string {
	r, ok := m.current()
	if !ok || r.kind != rowItem {
		return "\n\n"
	}
	tip := ""
	if r.item.Tooltip != "" {
		tip = formatter.Dim("ℹ " + r.item.Tooltip)
	}
	var links []string
	for _, l := range r.item.Links {
		links = append(links, l.Text+": "+formatter.StyleBlue.Render(l.URL))
	}
	return tip + "\n" + strings.Join(links, "  ") + "\n"
}

func (m *checklistModel) renderStatus() string {
	switch {
	case m.busy != "":
		return formatter.StyleYellow.Render(m.busy)
	case m.statusErr:
		return formatter.StyleRed.Render(m.status)
	case m.status != "":
		return formatter.StyleGreen.Render(m.status)
	default:
		return ""
	}
}
