// Package tui renders a live migration status dashboard in the
// terminal, polling the destination's migration_status table.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pcrm/legacy-migrate/internal/status"
)

const pollInterval = 2 * time.Second

// StatusLister is the slice of the status store the watcher needs.
type StatusLister interface {
	List(ctx context.Context) ([]status.Record, error)
}

type tickMsg time.Time

type statusMsg struct {
	records []status.Record
	err     error
}

// Model is the watch dashboard. It refreshes on a fixed tick until the
// user quits; it never mutates migration state.
type Model struct {
	store   StatusLister
	table   table.Model
	records []status.Record
	err     error
	lastAt  time.Time
	width   int
}

func NewModel(store StatusLister) Model {
	cols := []table.Column{
		{Title: "Table", Width: 28},
		{Title: "Status", Width: 11},
		{Title: "Migrated", Width: 12},
		{Title: "Total", Width: 12},
		{Title: "Error", Width: 40},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(16),
	)
	styles := table.DefaultStyles()
	styles.Header = styleHeader
	styles.Selected = styleSelected
	t.SetStyles(styles)

	return Model{store: store, table: t}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch, tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetch() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), pollInterval)
	defer cancel()
	records, err := m.store.List(ctx)
	return statusMsg{records: records, err: err}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetch
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(msg.Height - 7)

	case tickMsg:
		return m, tea.Batch(m.fetch, tick())

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.records = msg.records
			m.lastAt = time.Now()
			m.table.SetRows(toRows(msg.records))
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func toRows(records []status.Record) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.TableName,
			styledStatus(r.Status),
			fmt.Sprintf("%d", r.MigratedRecords),
			fmt.Sprintf("%d", r.TotalRecords),
			truncate(r.ErrorMessage, 40),
		})
	}
	return rows
}

func styledStatus(s string) string {
	switch s {
	case status.StatusCompleted:
		return styleCompleted.Render(s)
	case status.StatusFailed:
		return styleFailed.Render(s)
	case status.StatusRunning:
		return styleRunning.Render(s)
	default:
		return stylePending.Render(s)
	}
}

func (m Model) View() string {
	title := styleTitle.Render("Migration Status")

	var body string
	if m.err != nil {
		body = styleError.Render(fmt.Sprintf("status query failed: %v", m.err))
	} else if len(m.records) == 0 {
		body = stylePending.Render("no tables tracked yet")
	} else {
		body = styleTable.Render(m.table.View())
	}

	summary := m.summaryLine()
	help := styleHelp.Render("r refresh · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, body, summary, help)
}

func (m Model) summaryLine() string {
	var completed, running, failed, pending int
	for _, r := range m.records {
		switch r.Status {
		case status.StatusCompleted:
			completed++
		case status.StatusRunning:
			running++
		case status.StatusFailed:
			failed++
		default:
			pending++
		}
	}
	refreshed := "never"
	if !m.lastAt.IsZero() {
		refreshed = m.lastAt.Format("15:04:05")
	}
	return styleHelp.Render(fmt.Sprintf(
		"%d completed · %d running · %d failed · %d pending · refreshed %s",
		completed, running, failed, pending, refreshed))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// Run blocks until the user quits the dashboard.
func Run(store StatusLister) error {
	p := tea.NewProgram(NewModel(store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
