// Package tui is a terminal browser for one user's widgets.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n0roo/widget-kit/internal/widget"
)

const (
	refreshInterval = 5 * time.Second
	pageSize        = 15
)

// Lister loads pages of widgets
type Lister interface {
	List(ctx context.Context, userID string, q widget.ListQuery) (*widget.PagedResponse, error)
}

// Model is the widget browser model
type Model struct {
	// Config
	lister Lister
	userID string

	// Query state
	page      int
	category  int // 0 = all, n = categories[n-1]
	sortIndex int
	direction widget.Direction

	// State
	width       int
	height      int
	ready       bool
	loading     bool
	lastRefresh time.Time
	err         error
	data        *widget.PagedResponse

	// Components
	table   table.Model
	spinner spinner.Model
}

// tickMsg is sent periodically to refresh data
type tickMsg time.Time

// dataMsg carries refreshed data
type dataMsg struct {
	page *widget.PagedResponse
	err  error
}

// NewModel creates a new browser model
func NewModel(lister Lister, userID string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#374151")).
		Bold(true)
	t.SetStyles(ts)

	return Model{
		lister:    lister,
		userID:    userID,
		direction: widget.Desc,
		loading:   true,
		table:     t,
		spinner:   s,
	}
}

func columns(width int) []table.Column {
	desc := width - 26 - 10 - 6 - 8 - 20
	if desc < 20 {
		desc = 20
	}
	return []table.Column{
		{Title: "ID", Width: 26},
		{Title: "Category", Width: 10},
		{Title: "Level", Width: 6},
		{Title: "Version", Width: 8},
		{Title: "Description", Width: desc},
	}
}

// Query returns the list query for the current state
func (m Model) Query() widget.ListQuery {
	q := widget.ListQuery{
		Page:      m.page,
		Size:      pageSize,
		Sort:      widget.SortFields[m.sortIndex],
		Direction: m.direction,
	}
	if m.category > 0 {
		c := widget.Categories()[m.category-1]
		q.Category = &c
	}
	return q
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.refreshData(),
		tickEvery(refreshInterval),
	)
}

// tickEvery returns a command that ticks every duration
func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshData fetches the current page
func (m Model) refreshData() tea.Cmd {
	lister, userID, q := m.lister, m.userID, m.Query()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		page, err := lister.List(ctx, userID, q)
		return dataMsg{page: page, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "n":
			if m.data != nil && m.data.HasNext {
				m.page++
				return m.reload()
			}
		case "p":
			if m.page > 0 {
				m.page--
				return m.reload()
			}
		case "c":
			m.category = (m.category + 1) % (len(widget.Categories()) + 1)
			m.page = 0
			return m.reload()
		case "s":
			m.sortIndex = (m.sortIndex + 1) % len(widget.SortFields)
			return m.reload()
		case "o":
			if m.direction == widget.Asc {
				m.direction = widget.Desc
			} else {
				m.direction = widget.Asc
			}
			return m.reload()
		case "r":
			return m.reload()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.table.SetColumns(columns(msg.Width - 6))

	case tickMsg:
		return m, tea.Batch(
			m.refreshData(),
			tickEvery(refreshInterval),
		)

	case dataMsg:
		m.loading = false
		m.err = msg.err
		m.lastRefresh = time.Now()
		if msg.err == nil {
			m.data = msg.page
			m.table.SetRows(rows(msg.page))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.refreshData()
}

func rows(page *widget.PagedResponse) []table.Row {
	if page == nil {
		return nil
	}
	out := make([]table.Row, 0, len(page.Content))
	for _, w := range page.Content {
		out = append(out, table.Row{
			w.ID,
			string(w.Category),
			fmt.Sprintf("%d", w.Level),
			fmt.Sprintf("%d", w.Version),
			strings.ReplaceAll(w.Description, "\n", " "),
		})
	}
	return out
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	var b strings.Builder

	// Header
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n")

	// Content
	b.WriteString(listPanelStyle.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(m.renderDetail())

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(statusErrorStyle.Render("  ✗ " + m.err.Error()))
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	title := "Widget Browser"
	refresh := fmt.Sprintf("Last refresh: %s", m.lastRefresh.Format("15:04:05"))
	if m.loading {
		refresh = m.spinner.View() + " loading"
	}

	headerWidth := m.width
	if headerWidth < 60 {
		headerWidth = 60
	}

	left := titleStyle.Render(title)
	right := lipgloss.NewStyle().Foreground(mutedColor).Render(refresh)

	gap := headerWidth - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 0 {
		gap = 0
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#2D3748")).
		Padding(0, 1).
		Width(headerWidth).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderFilters() string {
	q := m.Query()

	category := "ALL"
	if q.Category != nil {
		category = string(*q.Category)
	}

	pages := "0/0"
	total := int64(0)
	if m.data != nil {
		total = m.data.TotalElements
		if m.data.TotalPages > 0 {
			pages = fmt.Sprintf("%d/%d", m.data.PageNumber+1, m.data.TotalPages)
		}
	}

	parts := []string{
		filterLabelStyle.Render("category ") + filterValueStyle.Render(category),
		filterLabelStyle.Render("sort ") + filterValueStyle.Render(q.Sort+" "+string(q.Direction)),
		filterLabelStyle.Render("page ") + filterValueStyle.Render(pages),
		filterLabelStyle.Render("total ") + filterValueStyle.Render(fmt.Sprintf("%d", total)),
	}
	return "  " + strings.Join(parts, "   ")
}

func (m Model) renderDetail() string {
	if m.data == nil || len(m.data.Content) == 0 {
		return statusMutedStyle.Render("  No widgets")
	}
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.data.Content) {
		return ""
	}
	w := m.data.Content[cursor]

	line := func(label, value string) string {
		return detailLabelStyle.Render(label) + detailValueStyle.Render(value) + "\n"
	}
	body := line("ID", w.ID) +
		detailLabelStyle.Render("Category") + CategoryBadge(string(w.Category)) + "\n" +
		detailLabelStyle.Render("Level") + LevelBar(w.Level) + fmt.Sprintf(" %d\n", w.Level) +
		line("Version", fmt.Sprintf("%d", w.Version)) +
		line("Created", w.CreatedAt.Local().Format("2006-01-02 15:04:05")) +
		line("Updated", w.UpdatedAt.Local().Format("2006-01-02 15:04:05")) +
		detailLabelStyle.Render("Description") + detailValueStyle.Render(w.Description)

	width := m.width - 4
	if width < 40 {
		width = 40
	}
	return detailPanelStyle.Width(width).Render(body)
}

func (m Model) renderFooter() string {
	keys := []struct{ key, desc string }{
		{"↑/↓", "Select"},
		{"n/p", "Page"},
		{"c", "Category"},
		{"s", "Sort"},
		{"o", "Order"},
		{"r", "Refresh"},
		{"q", "Quit"},
	}
	var parts []string
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render("["+k.key+"]")+" "+k.desc)
	}
	return helpStyle.Render("  " + strings.Join(parts, "  "))
}

// Run starts the browser
func Run(lister Lister, userID string) error {
	p := tea.NewProgram(NewModel(lister, userID), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
