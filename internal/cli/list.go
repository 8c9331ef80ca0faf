package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list [roots...]",
	Short: "List reconstructed event models",
	Long: `Scan the given source roots and print the reconstructed event inventory:
name, usage count, metric and log counts, implementation roles, and the
declaring file.

By default only events with an implementation are shown; --all includes
usage-only records.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, set, err := runCheck(args)
		if err != nil {
			return err
		}

		names := set.Names()
		sort.Strings(names)

		shown := 0
		fmt.Printf("%-40s %5s %8s %5s %-14s %s\n", "EVENT", "USES", "METRICS", "LOGS", "ROLES", "SOURCE")
		for _, name := range names {
			e := set[name]
			if !listAll && !e.ImplementsDirectEvent && !e.ImplementsHandle && e.ImplementsHandleFor == "" {
				continue
			}
			fmt.Printf("%-40s %5d %8d %5d %-14s %s\n",
				e.Name, e.UsageCount, len(e.Metrics), len(e.Logs), rolesLabel(e), e.SourcePath)
			shown++
		}
		fmt.Printf("\n%d of %d events shown\n", shown, len(set))
		return nil
	},
}

func rolesLabel(e *models.Event) string {
	var roles []string
	if e.ImplementsDirectEvent {
		roles = append(roles, "event")
	}
	if e.ImplementsHandleFor != "" {
		roles = append(roles, "registers")
	}
	if e.ImplementsHandle {
		roles = append(roles, "handle")
	}
	if len(roles) == 0 {
		return "-"
	}
	return strings.Join(roles, ",")
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include usage-only records without an implementation")
	rootCmd.AddCommand(listCmd)
}
