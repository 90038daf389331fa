package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webpify/cli/config"
	"github.com/pithecene-io/webpify/endpoint"
	"github.com/pithecene-io/webpify/types"
)

// loadConfig reads --config, or webpify.yaml when present.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	return config.LoadDefault(path, c.IsSet("config"))
}

// configVal extracts a value from cfg, returning the zero value if cfg is nil.
func configVal[T any](cfg *config.Config, fn func(*config.Config) T) T {
	if cfg == nil {
		var zero T
		return zero
	}
	return fn(cfg)
}

// resolveString returns the flag value when set on the command line,
// then the config value, then the flag default.
func resolveString(c *cli.Context, name, fromConfig string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if fromConfig != "" {
		return fromConfig
	}
	return c.String(name)
}

// resolveInt applies the same precedence as resolveString. A zero config
// value counts as unset.
func resolveInt(c *cli.Context, name string, fromConfig int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	if fromConfig != 0 {
		return fromConfig
	}
	return c.Int(name)
}

// resolveBool returns the flag when set, otherwise the config value.
func resolveBool(c *cli.Context, name string, fromConfig bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return fromConfig || c.Bool(name)
}

// resolveDuration returns the flag when set, otherwise the config value
// when positive, otherwise the flag default.
func resolveDuration(c *cli.Context, name string, fromConfig time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	if fromConfig > 0 {
		return fromConfig
	}
	return c.Duration(name)
}

// resolveEndpoint builds the provider chain: explicit URL first, then
// deployment host inference.
func resolveEndpoint(c *cli.Context, cfg *config.Config) endpoint.Provider {
	explicit := resolveString(c, "endpoint", configVal(cfg, func(c *config.Config) string { return c.Endpoint }))
	host := resolveString(c, "deployment-host", configVal(cfg, func(c *config.Config) string { return c.DeploymentHost }))
	return endpoint.Chain{
		endpoint.Explicit(explicit),
		endpoint.DefaultInference(host),
	}
}

// resolvePattern merges the rename flags over the config rename section.
// Returns nil when no template is selected.
func resolvePattern(c *cli.Context, cfg *config.Config) (*types.RenamePattern, error) {
	var rc config.RenameConfig
	if cfg != nil && cfg.Rename != nil {
		rc = *cfg.Rename
	}

	tmpl := resolveString(c, "pattern", rc.Template)
	prefix := resolveString(c, "prefix", rc.Prefix)
	suffix := resolveString(c, "suffix", rc.Suffix)
	start := resolveInt(c, "start-number", rc.StartNumber)

	if tmpl == "" {
		if prefix != "" || suffix != "" {
			return nil, fmt.Errorf("--prefix and --suffix require --pattern")
		}
		return nil, nil
	}

	t, err := types.ParseTemplate(tmpl)
	if err != nil {
		return nil, err
	}
	p := types.RenamePattern{
		Template:    t,
		Prefix:      prefix,
		Suffix:      suffix,
		StartNumber: start,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// resolveQuality merges --quality with the config value. Zero means the
// service default.
func resolveQuality(c *cli.Context, cfg *config.Config) (int, error) {
	q := 0
	if cfg != nil && cfg.Quality != nil {
		q = *cfg.Quality
	}
	if c.IsSet("quality") {
		q = c.Int("quality")
	}
	if q != 0 && (q < types.MinQuality || q > types.MaxQuality) {
		return 0, fmt.Errorf("--quality must be between %d and %d, got %d", types.MinQuality, types.MaxQuality, q)
	}
	return q, nil
}

// readFiles stats every path argument.
func readFiles(paths []string) ([]types.RawFile, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one image file is required")
	}
	files := make([]types.RawFile, 0, len(paths))
	for _, p := range paths {
		f, err := types.RawFileFromPath(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("file not found: %s", p)
			}
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}
		files = append(files, f)
	}
	return files, nil
}
