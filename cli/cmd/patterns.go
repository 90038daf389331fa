package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webpify/cli/render"
	"github.com/pithecene-io/webpify/naming"
	"github.com/pithecene-io/webpify/types"
)

// PatternRow describes one rename template with sample output.
type PatternRow struct {
	Template    string   `json:"template"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

// PatternsCommand returns the patterns command.
func PatternsCommand() *cli.Command {
	flags := ReadOnlyFlags()
	for _, f := range patternFlags() {
		if f.Names()[0] != "pattern" {
			flags = append(flags, f)
		}
	}
	flags = append(flags, &cli.IntFlag{
		Name:  "batch-size",
		Usage: "Batch size used for the examples",
		Value: 2,
	})

	return &cli.Command{
		Name:   "patterns",
		Usage:  "List rename templates with example names",
		Flags:  flags,
		Action: patternsAction,
	}
}

func patternsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	if c.Int("batch-size") < 1 {
		return cli.Exit("--batch-size must be >= 1", exitUsage)
	}
	return r.Render(patternRows(naming.New(), c.String("prefix"), c.String("suffix"), c.Int("start-number"), c.Int("batch-size")))
}

func patternRows(e *naming.Engine, prefix, suffix string, start, batchSize int) []PatternRow {
	rows := make([]PatternRow, 0, len(types.Templates))
	for _, t := range types.Templates {
		p := types.RenamePattern{Template: t, Prefix: prefix, Suffix: suffix, StartNumber: start}
		rows = append(rows, PatternRow{
			Template:    string(t),
			Description: t.Description(),
			Examples:    e.Preview(p, batchSize),
		})
	}
	return rows
}
