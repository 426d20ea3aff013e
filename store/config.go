package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/flux/dispatcher"
)

const (
	defaultName          = "root"
	defaultObserver      = "slog"
	defaultTracer        = "github.com/tailored-agentic-units/flux"
	defaultPrivatePrefix = "_"
)

// Config holds initialization parameters for a Root. Observer and Tracer are
// names resolved at construction: Observer through the observability registry,
// Tracer through the global OpenTelemetry tracer provider.
//
// Example YAML:
//
//	name: app
//	observer: slog
//	private_prefix: "_"
//	dispatcher:
//	  id_prefix: ID_
type Config struct {
	Name          string            `json:"name,omitempty" yaml:"name,omitempty"`
	Observer      string            `json:"observer,omitempty" yaml:"observer,omitempty"`
	Tracer        string            `json:"tracer,omitempty" yaml:"tracer,omitempty"`
	PrivatePrefix string            `json:"private_prefix,omitempty" yaml:"private_prefix,omitempty"`
	Dispatcher    dispatcher.Config `json:"dispatcher" yaml:"dispatcher"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Default values:
//   - Name: "root"
//   - Observer: "slog"
//   - PrivatePrefix: "_" (stores named "_x" are hidden from GetStores)
//   - Dispatcher.IDPrefix: "ID_"
func DefaultConfig() Config {
	return Config{
		Name:          defaultName,
		Observer:      defaultObserver,
		Tracer:        defaultTracer,
		PrivatePrefix: defaultPrivatePrefix,
		Dispatcher:    dispatcher.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.Tracer != "" {
		c.Tracer = source.Tracer
	}
	if source.PrivatePrefix != "" {
		c.PrivatePrefix = source.PrivatePrefix
	}

	c.Dispatcher.Merge(&source.Dispatcher)
}

// LoadConfig reads a JSON or YAML config file (chosen by extension), merges
// it over the defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
