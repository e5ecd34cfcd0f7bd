// Package statsui provides the Bubble Tea stint browser.
package statsui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/telehud/internal/model"
	"github.com/verte-zerg/telehud/internal/stats"
	"github.com/verte-zerg/telehud/internal/store"
)

const (
	headerHeight = 2
	footerHeight = 1
	detailHeight = 9
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea stint browser.
type Model struct {
	store *store.Store
	cfg   model.SessionsConfig

	report stats.Report
	errMsg string

	stints table.Model
	detail viewport.Model

	width  int
	height int
}

// NewModel constructs a stint browser model.
func NewModel(st *store.Store, cfg model.SessionsConfig) *Model {
	m := &Model{
		store:  st,
		cfg:    cfg,
		stints: newStintTable(),
		detail: viewport.New(0, 0),
	}
	m.stints.Focus()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.refreshReport()
			return m, nil
		case "g", "home":
			m.stints.GotoTop()
			m.renderDetail()
			return m, nil
		case "G", "end":
			m.stints.GotoBottom()
			m.renderDetail()
			return m, nil
		}
		var cmd tea.Cmd
		m.stints, cmd = m.stints.Update(msg)
		m.renderDetail()
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	parts := []string{m.renderHeader(), m.stints.View(), m.detail.View(), m.renderFooter()}
	return strings.Join(parts, "\n")
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = fmt.Sprintf("Failed to load stints: %v", err)
		m.report = stats.Report{}
	} else {
		m.errMsg = ""
		m.report = report
	}
	m.stints.SetRows(stintRows(m.report))
	// Newest stint first in view.
	m.stints.GotoBottom()
	m.renderDetail()
}

func (m *Model) updateLayout() {
	bodyHeight := max(m.height-headerHeight-footerHeight-detailHeight, 3)
	m.stints.SetWidth(m.width)
	m.stints.SetHeight(bodyHeight)
	m.detail.Width = m.width
	m.detail.Height = detailHeight
	m.renderDetail()
}

func (m *Model) selected() (model.StintAggregate, stats.Summary, bool) {
	idx := m.stints.Cursor()
	if idx < 0 || idx >= len(m.report.Stints) {
		return model.StintAggregate{}, stats.Summary{}, false
	}
	st := m.report.Stints[idx]
	return st, m.report.Summaries[st.StintID], true
}

func (m *Model) renderDetail() {
	st, sum, ok := m.selected()
	if !ok {
		m.detail.SetContent(headerStyle.Render("No stints recorded."))
		return
	}
	m.detail.SetContent(renderSummary(st, sum, m.width))
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render("telehud stints")
	filters := []string{fmt.Sprintf("%d stints", len(m.report.Stints))}
	if m.cfg.Source != "" {
		filters = append(filters, "source "+m.cfg.Source)
	}
	if m.cfg.Since != nil {
		filters = append(filters, "since "+m.cfg.Since.Format("2006-01-02"))
	}
	if m.cfg.Last > 0 {
		filters = append(filters, fmt.Sprintf("last %d", m.cfg.Last))
	}
	return title + "\n" + headerStyle.Render(strings.Join(filters, " · "))
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render("↑/↓ select · g/G top/bottom · r reload · q quit")
}

func newStintTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Started", Width: 16},
		{Title: "Source", Width: 10},
		{Title: "Samples", Width: 8},
		{Title: "Time (s)", Width: 9},
		{Title: "Peak DF", Width: 9},
		{Title: "Avg Drag", Width: 9},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(5),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func stintRows(report stats.Report) []table.Row {
	rows := make([]table.Row, 0, len(report.Stints))
	for _, st := range report.Stints {
		sum := report.Summaries[st.StintID]
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", st.StintID),
			st.StartedAt.Local().Format("2006-01-02 15:04"),
			st.Source,
			fmt.Sprintf("%d", st.Samples),
			fmt.Sprintf("%.1f", st.Elapsed),
			fmt.Sprintf("%.1f", sum.PeakDownforce),
			fmt.Sprintf("%.1f", sum.AvgDrag),
		})
	}
	return rows
}

func renderSummary(st model.StintAggregate, sum stats.Summary, width int) string {
	cards := []string{
		card("Avg front / rear", fmt.Sprintf("%.0f / %.0f", sum.AvgFront, sum.AvgRear)),
		card("Peak drag", fmt.Sprintf("%.1f", sum.PeakDrag)),
		card("Avg load FL FR RL RR", fmt.Sprintf("%.0f %.0f %.0f %.0f",
			sum.AvgLoad[model.WheelFL], sum.AvgLoad[model.WheelFR],
			sum.AvgLoad[model.WheelRL], sum.AvgLoad[model.WheelRR])),
		card("Wear FL FR RL RR", fmt.Sprintf("%.2f%% %.2f%% %.2f%% %.2f%%",
			sum.FinalWear[model.WheelFL]*100, sum.FinalWear[model.WheelFR]*100,
			sum.FinalWear[model.WheelRL]*100, sum.FinalWear[model.WheelRR]*100)),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	spark := stats.DownforceTrace(sum.Downforce, max(width-14, 10))
	title := cardTitleStyle.Render(fmt.Sprintf("Stint #%d downforce", st.StintID))
	return row + "\n" + title + "\n" + spark
}

func card(title, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value))
}
