package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/rendergraph/internal/report"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPaths []string // .hcl, .yaml and .yml files or directories

	LogFormat    string
	LogLevel     string
	OutputFormat string
	WorkerCount  int

	// ValidateOnly generates every graph without a target: annotations are
	// resolved and checked but no render passes are created.
	ValidateOnly bool
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.GraphPaths) == 0 {
		return nil, errors.New("at least one graph path is required")
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = string(report.FormatText)
	}
	if _, err := report.ParseFormat(cfg.OutputFormat); err != nil {
		return nil, err
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}
	return &cfg, nil
}
