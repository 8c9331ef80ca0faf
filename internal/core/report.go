package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

// BuildReport aggregates per-event violations and duplicate groups into a
// report with a total count. Findings are sorted by event name so output
// is deterministic regardless of scan order.
func BuildReport(set models.EventSet, duplicates [][]string) *models.Report {
	report := &models.Report{
		Duplicates: duplicates,
		Scanned:    len(set),
	}

	names := set.Names()
	sort.Strings(names)
	for _, name := range names {
		e := set[name]
		if len(e.Reports) == 0 {
			continue
		}
		report.Events = append(report.Events, models.EventFinding{
			Name:       e.Name,
			SourcePath: e.SourcePath,
			Violations: e.Reports,
		})
		report.Total += len(e.Reports)
	}
	report.Total += len(duplicates)

	return report
}

// RenderText formats a report the way operators read it: the declaring
// file path per invalid event followed by its indented violations, one
// line per duplicate group, and a final total line.
func RenderText(r *models.Report) string {
	var b strings.Builder
	for _, finding := range r.Events {
		path := finding.SourcePath
		if path == "" {
			path = "(declaration not found)"
		}
		fmt.Fprintf(&b, "%s (%s)\n", path, finding.Name)
		for _, violation := range finding.Violations {
			fmt.Fprintf(&b, "    %s\n", violation)
		}
	}
	for _, group := range r.Duplicates {
		fmt.Fprintf(&b, "Duplicate event definitions: %s\n", strings.Join(group, ", "))
	}
	fmt.Fprintf(&b, "%d violations\n", r.Total)
	return b.String()
}
