package testsupport

import (
	"path/filepath"
	"testing"

	"folio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted at a unique temp base directory. Sources
// default to A and B with destination C.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = ""
	cfg.Relocation.Sources = []string{"A", "B"}
	cfg.Relocation.Destination = "C"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return &cfg
}

// WithSources overrides the source folder list.
func WithSources(names ...string) ConfigOption {
	return func(c *config.Config) {
		c.Relocation.Sources = append([]string(nil), names...)
	}
}

// WithDestination overrides the destination folder name.
func WithDestination(name string) ConfigOption {
	return func(c *config.Config) {
		c.Relocation.Destination = name
	}
}
