package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/telemetrylint/eventcheck/internal/core"
	"github.com/telemetrylint/eventcheck/internal/observability"
	"github.com/telemetrylint/eventcheck/pkg/models"
)

// ErrViolationsFound signals a completed run that found violations. The
// report has already been printed; main exits non-zero without extra noise.
var ErrViolationsFound = errors.New("violations found")

var (
	checkFormat  string
	checkNoColor bool
)

var checkCmd = &cobra.Command{
	Use:   "check [roots...]",
	Short: "Scan source roots and validate event conventions",
	Long: `Scan the given source roots (or the configured defaults) and validate
every discovered event against the convention rule set: usage, class-suffix
contracts, error events, dropped-events events, constant tags, and
duplicate definitions.

Exits 0 when no violations are found, 1 otherwise.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, _, err := runCheck(args)
		if err != nil {
			return err
		}

		switch checkFormat {
		case "text":
			if checkNoColor {
				fmt.Print(core.RenderText(report))
			} else {
				fmt.Print(renderStyledReport(report))
			}
		case "json":
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting report as JSON: %w", err)
			}
			fmt.Println(string(data))
		case "yaml":
			data, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("formatting report as YAML: %w", err)
			}
			fmt.Print(string(data))
		default:
			return fmt.Errorf("unsupported format %q (use text, json, or yaml)", checkFormat)
		}

		if !report.Valid() {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return ErrViolationsFound
		}
		return nil
	},
}

// runCheck performs one complete pass: scan, validate, detect duplicates,
// aggregate. The event set is fully populated and frozen before any
// validation runs.
func runCheck(roots []string) (*models.Report, models.EventSet, error) {
	if Scanner == nil {
		return nil, nil, fmt.Errorf("scanner not initialized")
	}
	if len(roots) == 0 {
		if Config == nil || len(Config.Roots) == 0 {
			return nil, nil, fmt.Errorf("no source roots given or configured")
		}
		roots = Config.Roots
	}

	// Relative roots resolve against the base path.
	resolved := make([]string, len(roots))
	for i, root := range roots {
		if !filepath.IsAbs(root) && BasePath != "" {
			root = filepath.Join(BasePath, root)
		}
		resolved[i] = root
	}
	roots = resolved

	logRunEvent("run.started", "check run started", map[string]any{"roots": roots})

	set, err := Scanner.Scan(roots)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning sources: %w", err)
	}

	core.ValidateAll(set)
	duplicates := core.FindDuplicates(set)
	report := core.BuildReport(set, duplicates)

	logRunEvent("run.completed", "check run completed", map[string]any{
		"roots":      roots,
		"events":     report.Scanned,
		"violations": report.Total,
	})

	return report, set, nil
}

// logRunEvent appends to the run log when one is configured. Run logging
// is best-effort and never fails the check.
func logRunEvent(eventType, message string, data map[string]any) {
	if RunLog == nil {
		return
	}
	_ = RunLog.Write(observability.RunEvent{
		Time:    time.Now().UTC(),
		Type:    eventType,
		Message: message,
		Data:    data,
	})
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "Output format: text, json, or yaml")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "Disable styled text output")
	rootCmd.AddCommand(checkCmd)
}
