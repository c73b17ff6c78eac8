package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRelocation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		return errors.New("paths.base_dir must be set")
	}
	return nil
}

func (c *Config) validateRelocation() error {
	if err := validateFolderName(c.Relocation.Destination); err != nil {
		return fmt.Errorf("relocation.destination: %w", err)
	}
	if len(c.Relocation.Sources) == 0 {
		return errors.New("relocation.sources must list at least one folder")
	}
	seen := make(map[string]int, len(c.Relocation.Sources))
	for i, name := range c.Relocation.Sources {
		if err := validateFolderName(name); err != nil {
			return fmt.Errorf("relocation.sources[%d]: %w", i, err)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("relocation.sources[%d]: %q duplicates relocation.sources[%d]", i, name, prev)
		}
		seen[name] = i
		if name == c.Relocation.Destination {
			return fmt.Errorf("relocation.sources[%d]: %q is also the destination", i, name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// validateFolderName accepts a single path element directly under the base directory.
func validateFolderName(name string) error {
	switch {
	case name == "":
		return errors.New("folder name must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("folder name %q is not allowed", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("folder name %q must not contain a path separator", name)
	}
	return nil
}
