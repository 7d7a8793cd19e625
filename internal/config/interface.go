package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the given files and translates every graph they describe
	// into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// Extensions lists the file extensions, with the leading dot, that the
	// loader understands.
	Extensions() []string
}
