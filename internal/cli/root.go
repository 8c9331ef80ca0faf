package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "eventcheck",
	Short: "eventcheck - convention checker for structured telemetry events",
	Long: `eventcheck scans a source tree for internal event definitions and the
metrics and log lines they emit, then validates naming, severity, and
tagging conventions so operators and downstream log/metric consumers can
rely on stable contracts.

It reconstructs each event's declared members, counters, gauges,
histograms, and log calls by structural pattern matching, runs a fixed
rule set against the reconstruction, and reports violations and duplicate
event definitions.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("eventcheck %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
