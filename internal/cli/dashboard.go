package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

// Dashboard panel indices.
const (
	panelFindings = iota
	panelDuplicates
	panelSummary
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	report *models.Report

	// State.
	loading bool
	err     error
}

// reportLoadedMsg carries a completed check run back to the model.
type reportLoadedMsg struct {
	report *models.Report
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelFindings,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadReport
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadReport
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case reportLoadedMsg:
		m.loading = false
		m.report = msg.report
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" eventcheck ")
	help := helpStyle.Render("tab: switch panel | r: re-run check | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Running check...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	findingsPanel := m.renderFindingsPanel()
	duplicatesPanel := m.renderDuplicatesPanel()
	summaryPanel := m.renderSummaryPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		findingsPanel = m.applyPanelStyle(panelFindings, findingsPanel, colWidth-4)
		duplicatesPanel = m.applyPanelStyle(panelDuplicates, duplicatesPanel, colWidth-4)
		summaryPanel = m.applyPanelStyle(panelSummary, summaryPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, findingsPanel, duplicatesPanel, summaryPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		findingsPanel = m.applyPanelStyle(panelFindings, findingsPanel, panelWidth)
		duplicatesPanel = m.applyPanelStyle(panelDuplicates, duplicatesPanel, panelWidth)
		summaryPanel = m.applyPanelStyle(panelSummary, summaryPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, findingsPanel, duplicatesPanel, summaryPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderFindingsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Invalid events"))
	b.WriteString("\n")

	if m.report == nil || len(m.report.Events) == 0 {
		b.WriteString("  No violations found.")
		return b.String()
	}

	for _, finding := range m.report.Events {
		b.WriteString(eventNameStyle.Render("  " + finding.Name))
		b.WriteString("\n")
		for _, violation := range finding.Violations {
			b.WriteString(violationStyle.Render("    " + violation))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m dashboardModel) renderDuplicatesPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Duplicate definitions"))
	b.WriteString("\n")

	if m.report == nil || len(m.report.Duplicates) == 0 {
		b.WriteString("  No duplicate definitions.")
		return b.String()
	}

	for _, group := range m.report.Duplicates {
		b.WriteString(duplicateStyle.Render("  " + strings.Join(group, ", ")))
		b.WriteString("\n")
	}

	return b.String()
}

func (m dashboardModel) renderSummaryPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Summary"))
	b.WriteString("\n")

	if m.report == nil {
		b.WriteString("  No report.")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %-18s %d\n", "Events scanned:", m.report.Scanned))
	b.WriteString(fmt.Sprintf("  %-18s %d\n", "Invalid events:", len(m.report.Events)))
	b.WriteString(fmt.Sprintf("  %-18s %d\n", "Duplicate groups:", len(m.report.Duplicates)))
	b.WriteString(fmt.Sprintf("  %-18s %d\n", "Total violations:", m.report.Total))

	if m.report.Valid() {
		b.WriteString("\n")
		b.WriteString(okStyle.Render("  All conventions satisfied."))
	}

	return b.String()
}

func loadReport() tea.Msg {
	report, _, err := runCheck(nil)
	if err != nil {
		return reportLoadedMsg{err: err}
	}
	return reportLoadedMsg{report: report}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive dashboard over check findings",
	Long: `Run a check over the configured roots and browse the findings in an
interactive terminal dashboard with panels for invalid events, duplicate
definitions, and a run summary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Scanner == nil {
			return fmt.Errorf("scanner not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
