// Package config defines the static audit definition compiled into hostaudit.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete audit definition.
type Config struct {
	// SensitiveFiles maps OS keys to the file whose permission bits are inspected.
	// The key can be:
	// - An OS name like "linux", "darwin", "freebsd"
	// - A comma-separated list like "linux,freebsd"
	// - "unix" for all Unix-like systems
	// - "all" for all systems.
	SensitiveFiles map[string]string `yaml:"sensitive_files"`
	Blacklist      []string          `yaml:"blacklist"`
	GPU            CommandRule       `yaml:"gpu"`
}

// CommandRule defines an external command with its execution limit.
type CommandRule struct {
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Parse decodes and validates an audit definition.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse audit config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every field the audit depends on is usable.
func (c *Config) Validate() error {
	if len(c.Blacklist) == 0 {
		return errors.New("blacklist must not be empty")
	}
	for i, name := range c.Blacklist {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("blacklist entry %d is empty", i)
		}
	}
	if c.GPU.Command == "" {
		return errors.New("gpu command is required")
	}
	if c.GPU.Timeout <= 0 {
		return fmt.Errorf("gpu timeout must be positive, got %v", c.GPU.Timeout)
	}
	if len(c.SensitiveFiles) == 0 {
		return errors.New("at least one sensitive file is required")
	}
	return nil
}

// PathForOS returns the sensitive file path for a specific OS.
// Priority order:
// 1. Exact OS match (e.g., "freebsd")
// 2. Comma-separated match (e.g., "linux,freebsd")
// 3. Unix (for all Unix-like systems)
// 4. All (works on any OS).
func (c *Config) PathForOS(osName string) string {
	if path, ok := c.SensitiveFiles[osName]; ok && path != "" {
		return path
	}

	for key, path := range c.SensitiveFiles {
		if !strings.Contains(key, ",") || path == "" {
			continue
		}
		for part := range strings.SplitSeq(key, ",") {
			if strings.TrimSpace(part) == osName {
				return path
			}
		}
	}

	if osName != "windows" {
		if path := c.SensitiveFiles["unix"]; path != "" {
			return path
		}
	}

	return c.SensitiveFiles["all"]
}
