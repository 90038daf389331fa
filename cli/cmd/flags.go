// Package cmd provides CLI commands for the webpify binary.
package cmd

import (
	"os"

	"github.com/urfave/cli/v2"
)

// Exit codes for convert. Other commands use exitSuccess, exitUsage and
// exitConversion only.
const (
	exitSuccess    = 0
	exitConversion = 1
	exitUsage      = 2
	exitDownload   = 3
)

// Shared flags for every command.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

// configFlag points at a YAML config file. Without it webpify.yaml is
// read from the working directory when present. Each command gets its
// own instance.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "Path to YAML config file (default: ./webpify.yaml if present)",
	}
}

// ReadOnlyFlags returns the shared output flags.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
	}
}

// endpointFlags select the conversion service.
func endpointFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "Conversion service base URL (overrides host inference)",
		},
		&cli.StringFlag{
			Name:  "deployment-host",
			Usage: "Host name used to infer the service (default: os hostname)",
		},
	}
}

// patternFlags configure the rename pattern.
func patternFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "pattern",
			Usage: "Rename template: name, number, date, time, random",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "Text prepended to generated names (requires --pattern)",
		},
		&cli.StringFlag{
			Name:  "suffix",
			Usage: "Text appended to generated names (requires --pattern)",
		},
		&cli.IntFlag{
			Name:  "start-number",
			Usage: "First number for the number template",
			Value: 1,
		},
	}
}

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
