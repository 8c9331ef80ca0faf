package models

// CheckConfig holds the settings for a check run, read from .eventcheckrc
// via Viper with defaults for every key.
type CheckConfig struct {
	// Roots are the directories scanned for source files, relative to the
	// base path unless absolute.
	Roots []string `yaml:"roots" mapstructure:"roots"`

	// SourceExtension selects which files are scanned (e.g. ".rs").
	SourceExtension string `yaml:"extension" mapstructure:"extension"`

	// DefinitionPrefixes are the root-relative subtree prefixes under
	// which struct declarations and implementation blocks are extracted.
	// Usage counting applies everywhere regardless.
	DefinitionPrefixes []string `yaml:"definition_paths" mapstructure:"definition_paths"`

	// SkipMarker is a case-insensitive literal that, when present anywhere
	// in a file, suppresses dropped-events validation for every event
	// declared in that file.
	SkipMarker string `yaml:"skip_marker" mapstructure:"skip_marker"`

	// DroppedEventType is the well-known events-dropped event type name.
	DroppedEventType string `yaml:"dropped_event_type" mapstructure:"dropped_event_type"`

	// RunLogPath is where the JSONL run log is appended; empty disables it.
	RunLogPath string `yaml:"run_log" mapstructure:"run_log"`
}
