package core

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

// ConfigLoader reads and validates the check configuration from the
// .eventcheckrc file at the base path.
type ConfigLoader interface {
	Load() (*models.CheckConfig, error)
}

type viperConfigLoader struct {
	basePath string
}

// NewConfigLoader creates a ConfigLoader that reads .eventcheckrc relative
// to basePath.
func NewConfigLoader(basePath string) ConfigLoader {
	return &viperConfigLoader{basePath: basePath}
}

// DefaultCheckConfig returns a CheckConfig populated with the conventional
// layout: usage scanning over src/ and lib/, declarations under the two
// internal-event subtrees.
func DefaultCheckConfig() *models.CheckConfig {
	return &models.CheckConfig{
		Roots:              []string{"src", "lib"},
		SourceExtension:    ".rs",
		DefinitionPrefixes: []string{"src/internal_events", "lib/internal_event"},
		SkipMarker:         "skip check-dropped-events",
		DroppedEventType:   "ComponentEventsDropped",
		RunLogPath:         ".eventcheck_runs.jsonl",
	}
}

// Load reads the .eventcheckrc file using Viper. A missing file yields the
// defaults; a malformed file is an error.
func (cl *viperConfigLoader) Load() (*models.CheckConfig, error) {
	cfg := DefaultCheckConfig()

	v := viper.New()
	v.SetConfigName(".eventcheckrc")
	v.SetConfigType("yaml")
	v.AddConfigPath(cl.basePath)

	v.SetDefault("scan.roots", cfg.Roots)
	v.SetDefault("scan.extension", cfg.SourceExtension)
	v.SetDefault("scan.definition_paths", cfg.DefinitionPrefixes)
	v.SetDefault("scan.skip_marker", cfg.SkipMarker)
	v.SetDefault("events.dropped_type", cfg.DroppedEventType)
	v.SetDefault("run_log.path", cfg.RunLogPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .eventcheckrc: %w", err)
		}
	}

	cfg.Roots = v.GetStringSlice("scan.roots")
	cfg.SourceExtension = v.GetString("scan.extension")
	cfg.DefinitionPrefixes = v.GetStringSlice("scan.definition_paths")
	cfg.SkipMarker = v.GetString("scan.skip_marker")
	cfg.DroppedEventType = v.GetString("events.dropped_type")
	cfg.RunLogPath = v.GetString("run_log.path")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *models.CheckConfig) error {
	if len(cfg.Roots) == 0 {
		return fmt.Errorf("scan.roots must name at least one directory")
	}
	if cfg.SourceExtension == "" {
		return fmt.Errorf("scan.extension must not be empty")
	}
	if cfg.DroppedEventType == "" {
		return fmt.Errorf("events.dropped_type must not be empty")
	}
	return nil
}
