package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/pithecene-io/webpify/types"
)

// DefaultPath is read when --config is not given. A missing default file
// is not an error.
const DefaultPath = "webpify.yaml"

// Config represents a webpify.yaml configuration file.
// All values are optional and act as defaults for command flags.
// CLI flags always override config values.
type Config struct {
	Endpoint       string        `yaml:"endpoint"`
	DeploymentHost string        `yaml:"deployment_host"`
	Quality        *int          `yaml:"quality,omitempty"`
	Rename         *RenameConfig `yaml:"rename,omitempty"`
	Output         OutputConfig  `yaml:"output"`
	Adapter        AdapterConfig `yaml:"adapter"`
}

// RenameConfig is the rename pattern section.
type RenameConfig struct {
	Template    string `yaml:"template"`
	Prefix      string `yaml:"prefix"`
	Suffix      string `yaml:"suffix"`
	StartNumber int    `yaml:"start_number"`
}

// OutputConfig selects where downloads are saved.
type OutputConfig struct {
	// Backend is "fs" (default) or "s3".
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds notification adapter defaults.
type AdapterConfig struct {
	Type      string            `yaml:"type"`
	URL       string            `yaml:"url"`
	Channel   string            `yaml:"channel,omitempty"`
	LatestKey string            `yaml:"latest_key,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	Timeout   Duration          `yaml:"timeout,omitempty"`
	Retries   *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// RenamePattern converts the rename section. Returns nil when absent.
func (c *Config) RenamePattern() (*types.RenamePattern, error) {
	if c.Rename == nil || c.Rename.Template == "" {
		return nil, nil
	}
	tmpl, err := types.ParseTemplate(c.Rename.Template)
	if err != nil {
		return nil, err
	}
	p := types.RenamePattern{
		Template:    tmpl,
		Prefix:      c.Rename.Prefix,
		Suffix:      c.Rename.Suffix,
		StartNumber: c.Rename.StartNumber,
	}.Normalized()
	return &p, p.Validate()
}

// Validate checks values that can be rejected before any flag merging.
func (c *Config) Validate() error {
	if c.Quality != nil && (*c.Quality < types.MinQuality || *c.Quality > types.MaxQuality) {
		return fmt.Errorf("quality must be between %d and %d, got %d", types.MinQuality, types.MaxQuality, *c.Quality)
	}
	switch c.Output.Backend {
	case "", "fs":
	case "s3":
		if c.Output.Path == "" {
			return errors.New("output.path (bucket[/prefix]) is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown output backend %q (must be fs or s3)", c.Output.Backend)
	}
	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		return fmt.Errorf("unknown adapter type %q (must be webhook or redis)", c.Adapter.Type)
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		return fmt.Errorf("adapter.retries must be >= 0, got %d", *c.Adapter.Retries)
	}
	if _, err := c.RenamePattern(); err != nil {
		return err
	}
	return nil
}
