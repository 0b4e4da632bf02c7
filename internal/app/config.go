package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPath points at an .hcl file or a directory of .hcl fragments.
	// It may name a missing path; the pipeline defaults are complete.
	ConfigPath string
	// OutputPath is where the final JSON document is written.
	OutputPath string
	// VisualizeItem, when non-empty, switches the run into console
	// visualization mode for that item instead of document generation.
	VisualizeItem string
	// RefreshCache bypasses cache freshness and refetches upstream data.
	RefreshCache bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.OutputPath == "" && cfg.VisualizeItem == "" {
		return nil, errors.New("OutputPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
