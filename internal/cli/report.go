package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

// Report style definitions.
var (
	pathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	eventNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	violationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	duplicateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)

	summaryStyle = lipgloss.NewStyle().Bold(true)
)

// renderStyledReport renders a report for terminal display: the declaring
// path per invalid event with its indented violations, duplicate groups,
// and the total line.
func renderStyledReport(r *models.Report) string {
	var b strings.Builder

	for _, finding := range r.Events {
		path := finding.SourcePath
		if path == "" {
			path = "(declaration not found)"
		}
		b.WriteString(pathStyle.Render(path))
		b.WriteString(" ")
		b.WriteString(eventNameStyle.Render("(" + finding.Name + ")"))
		b.WriteString("\n")
		for _, violation := range finding.Violations {
			b.WriteString("    ")
			b.WriteString(violationStyle.Render(violation))
			b.WriteString("\n")
		}
	}

	for _, group := range r.Duplicates {
		b.WriteString(duplicateStyle.Render("Duplicate event definitions: " + strings.Join(group, ", ")))
		b.WriteString("\n")
	}

	if r.Valid() {
		b.WriteString(okStyle.Render(fmt.Sprintf("%d events checked, no violations", r.Scanned)))
	} else {
		b.WriteString(summaryStyle.Render(fmt.Sprintf("%d violations", r.Total)))
	}
	b.WriteString("\n")

	return b.String()
}
