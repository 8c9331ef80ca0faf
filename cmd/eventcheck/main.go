package main

import (
	"errors"
	"fmt"
	"os"

	app "github.com/telemetrylint/eventcheck/internal"
	"github.com/telemetrylint/eventcheck/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	if _, err := app.NewApp(basePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing eventcheck: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Execute(); err != nil {
		// Violations were already reported; exit non-zero without noise.
		if errors.Is(err, cli.ErrViolationsFound) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
