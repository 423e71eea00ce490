// Package tui is an interactive terminal browser for one collection. It
// drives the same grid view as the web pages: typing filters, s cycles
// the sort of the selected column and [ ] move between pages.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/conduit-lang/explorer/internal/cli/ui"
	"github.com/conduit-lang/explorer/internal/explorer"
	"github.com/conduit-lang/explorer/pkg/grid"
)

const (
	maxColumnWidth = 32
	// chromeHeight is the number of lines around the table.
	chromeHeight = 9
)

type loadedMsg struct {
	collection *explorer.Collection
	err        error
}

type itemMsg struct {
	item *explorer.Item
	err  error
}

type mode int

const (
	modeTable mode = iota
	modeFilter
	modeDetail
)

// Options configures the browser.
type Options struct {
	// PageSize overrides the service page size when > 0.
	PageSize int
	Theme    explorer.Theme
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx      context.Context
	service  *explorer.Service
	name     string
	pageSize int
	title    string

	collection *explorer.Collection
	view       *grid.View
	rendered   grid.Table
	column     int

	table  table.Model
	filter textinput.Model
	help   help.Model
	keys   keyMap
	styles Styles

	mode mode
	item *explorer.Item
	err  error
}

// New creates a browser for the collection name. Nothing is fetched
// until the program starts.
func New(ctx context.Context, service *explorer.Service, name string, opts Options) Model {
	styles := NewStyles(opts.Theme)

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithStyles(styles.Table),
	)

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "filter rows..."
	fi.CharLimit = 120
	fi.Width = 40

	title := opts.Theme.Title
	if title == "" {
		title = explorer.DefaultTheme().Title
	}

	return Model{
		ctx:      ctx,
		service:  service,
		name:     name,
		pageSize: opts.PageSize,
		title:    title,
		table:    t,
		filter:   fi,
		help:     help.New(),
		keys:     defaultKeyMap(),
		styles:   styles,
	}
}

// Run starts a full-screen program and blocks until the user quits.
func Run(ctx context.Context, service *explorer.Service, name string, opts Options) error {
	p := tea.NewProgram(New(ctx, service, name, opts), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.collection == nil && m.err != nil {
		return m.err
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	ctx, svc, name := m.ctx, m.service, m.name
	return func() tea.Msg {
		c, err := svc.Open(ctx, name)
		return loadedMsg{collection: c, err: err}
	}
}

func (m Model) openItem(id string) tea.Cmd {
	ctx, svc, name := m.ctx, m.service, m.name
	return func() tea.Msg {
		item, err := svc.Item(ctx, name, id)
		return itemMsg{item: item, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setCollection(msg.collection)
		return m, nil

	case itemMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.item = msg.item
		m.mode = modeDetail
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modeFilter {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

// setCollection swaps in freshly loaded rows, keeping the filter, sort
// and page of a previous load.
func (m *Model) setCollection(c *explorer.Collection) {
	prev := m.view
	m.collection = c
	m.view = m.service.View(c, m.pageSize)
	if prev != nil {
		m.view.SetFilter(prev.Query())
		m.view.SetSort(prev.SortState())
		m.view.SetPage(prev.Page())
	}
	if m.column >= len(m.view.Columns()) {
		m.column = 0
	}
	m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case modeFilter:
		switch msg.Type {
		case tea.KeyEnter:
			m.mode = modeTable
			m.filter.Blur()
			return m, nil
		case tea.KeyEsc:
			m.mode = modeTable
			m.filter.Blur()
			m.filter.SetValue("")
			m.applyFilter()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd

	case modeDetail:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.mode = modeTable
			m.item = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		return m, m.load()
	}
	if m.view == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Sort):
		if cols := m.view.Columns(); len(cols) > 0 {
			m.view.ToggleSort(cols[m.column].Key)
			m.refresh()
			m.resetCursor()
		}
		return m, nil
	case key.Matches(msg, m.keys.PrevCol):
		if m.column > 0 {
			m.column--
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.NextCol):
		if m.column < len(m.view.Columns())-1 {
			m.column++
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.PrevPage):
		m.view.PrevPage()
		m.refresh()
		m.resetCursor()
		return m, nil
	case key.Matches(msg, m.keys.NextPage):
		m.view.NextPage()
		m.refresh()
		m.resetCursor()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		i := m.table.Cursor()
		if i >= 0 && i < len(m.rendered.Rows) {
			return m, m.openItem(m.rendered.Rows[i].Key)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) applyFilter() {
	if m.view == nil {
		return
	}
	m.view.SetFilter(m.filter.Value())
	m.refresh()
	m.resetCursor()
}

func (m *Model) resetCursor() {
	if len(m.rendered.Rows) > 0 {
		m.table.SetCursor(0)
	}
}

// refresh re-renders the view and pushes it into the table widget.
func (m *Model) refresh() {
	m.rendered = m.view.Render()

	rows := make([]table.Row, len(m.rendered.Rows))
	for i, r := range m.rendered.Rows {
		cells := make(table.Row, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = cellText(c)
		}
		rows[i] = cells
	}

	columns := make([]table.Column, len(m.rendered.Headers))
	for i, h := range m.rendered.Headers {
		title := h.Label + h.Indicator
		if i == m.column {
			title = "›" + title
		}
		width := lipgloss.Width(title)
		for _, r := range rows {
			width = max(width, lipgloss.Width(r[i]))
		}
		columns[i] = table.Column{Title: title, Width: min(width, maxColumnWidth)}
	}

	// Rows go first so the widget never renders old rows against new
	// columns.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	if n := len(rows); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
}

func cellText(c grid.Cell) string {
	return strings.ReplaceAll(ui.CellText(c, true), "\n", " ")
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%s · %s", m.title, m.name)))
	b.WriteString("\n")

	switch {
	case m.collection == nil && m.err != nil:
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render("r retry · q quit"))
		return b.String()
	case m.collection == nil:
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Loading %s…", m.name)))
		return b.String()
	case m.mode == modeDetail && m.item != nil:
		b.WriteString(m.detailView())
		return b.String()
	}

	if m.collection.Warning != "" {
		b.WriteString(m.styles.Warning.Render("⚠ " + m.collection.Warning))
		b.WriteString("\n")
	}
	if m.mode == modeFilter || m.view.Query() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if m.rendered.Empty {
		b.WriteString(m.styles.Muted.Render(m.rendered.Message))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
		if m.rendered.NoMatches {
			b.WriteString(m.styles.Muted.Render(m.rendered.Message))
			b.WriteString("\n")
		}
	}

	status := fmt.Sprintf("%s · %s", m.rendered.MatchLabel(), m.rendered.PageLabel())
	if s := m.rendered.Sort; !s.IsNone() {
		status += fmt.Sprintf(" · sorted by %s %s", s.Key, s.Direction)
	}
	b.WriteString(m.styles.Status.Render(status))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) detailView() string {
	width := 0
	for _, e := range m.item.Entries {
		width = max(width, lipgloss.Width(e.Label))
	}
	indent := strings.Repeat(" ", width+2)

	var b strings.Builder
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%s/%s", m.item.Collection, m.item.ID)))
	b.WriteString("\n\n")
	for _, e := range m.item.Entries {
		label := e.Label + strings.Repeat(" ", width-lipgloss.Width(e.Label))
		value := strings.ReplaceAll(ui.CellText(e.Cell, true), "\n", "\n"+indent)
		b.WriteString(m.styles.Label.Render(label))
		b.WriteString("  ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("esc back · q quit"))
	return b.String()
}
