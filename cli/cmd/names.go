package cmd

import (
	"context"

	"github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webpify/cli/render"
	"github.com/pithecene-io/webpify/download"
	"github.com/pithecene-io/webpify/endpoint"
	"github.com/pithecene-io/webpify/session"
	"github.com/pithecene-io/webpify/types"
)

// NameRow pairs an input with the name it would be submitted under.
type NameRow struct {
	Position  int    `json:"position"`
	Original  string `json:"original"`
	Generated string `json:"generated"`
	Size      int64  `json:"size_bytes"`
}

// NamesCommand returns the names command.
// Names previews generated filenames. It must not contact the service.
func NamesCommand() *cli.Command {
	flags := []cli.Flag{configFlag()}
	flags = append(flags, ReadOnlyFlags()...)
	flags = append(flags, patternFlags()...)
	flags = append(flags, &cli.IntSliceFlag{
		Name:  "exclude",
		Usage: "1-based positions to drop from the batch (e.g. 1,3)",
	})

	return &cli.Command{
		Name:      "names",
		Usage:     "Preview generated output names without converting",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action:    namesAction,
	}
}

func namesAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	files, err := readFiles(c.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	pattern, err := resolvePattern(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	rows, err := previewNames(c.Context, files, pattern, c.IntSlice("exclude"))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	return r.Render(rows)
}

// previewNames runs the files through an offline session. The endpoint
// is never contacted and nothing is saved.
func previewNames(ctx context.Context, files []types.RawFile, pattern *types.RenamePattern, exclude []int) ([]NameRow, error) {
	sess, err := session.New(session.Config{
		Endpoint: endpoint.Explicit(endpoint.DevelopmentURL),
		Pattern:  pattern,
		Saver:    download.NewStoreSaver(lode.NewMemory(), ""),
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close(ctx) }()

	if err := selectBatch(ctx, sess, files, exclude); err != nil {
		return nil, err
	}
	names, err := sess.GeneratedNames()
	if err != nil {
		return nil, err
	}

	selected := sess.Files()
	rows := make([]NameRow, len(selected))
	for i, f := range selected {
		rows[i] = NameRow{
			Position:  i + 1,
			Original:  f.OriginalName,
			Generated: names[i],
			Size:      f.SizeBytes,
		}
	}
	return rows, nil
}
