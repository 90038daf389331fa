package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webpify/cli/render"
	"github.com/pithecene-io/webpify/cli/tui"
	"github.com/pithecene-io/webpify/client"
	"github.com/pithecene-io/webpify/log"
	"github.com/pithecene-io/webpify/request"
	"github.com/pithecene-io/webpify/session"
	"github.com/pithecene-io/webpify/types"
)

// ConvertResponse summarizes one convert invocation.
type ConvertResponse struct {
	SessionID string   `json:"session_id"`
	Endpoint  string   `json:"endpoint"`
	Files     int      `json:"files"`
	Results   []string `json:"results"`
	Bundle    bool     `json:"bundle"`
	Saved     []string `json:"saved"`
	Skipped   []string `json:"skipped,omitempty"`
	Duration  string   `json:"duration"`
}

// ConvertCommand returns the convert command.
func ConvertCommand() *cli.Command {
	flags := []cli.Flag{configFlag()}
	flags = append(flags, ReadOnlyFlags()...)
	flags = append(flags, endpointFlags()...)
	flags = append(flags, patternFlags()...)
	flags = append(flags, outputFlags()...)
	flags = append(flags, adapterFlags()...)
	flags = append(flags,
		&cli.IntSliceFlag{
			Name:  "exclude",
			Usage: "1-based positions to drop from the batch (e.g. 1,3)",
		},
		&cli.IntFlag{
			Name:  "quality",
			Usage: "WebP quality 1-100 (default 85)",
		},
		&cli.BoolFlag{
			Name:  "individual",
			Usage: "Save each result separately instead of one archive",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Browse results interactively instead of saving immediately",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress logs and summary output",
		},
	)

	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert images to WebP through the conversion service",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action:    convertAction,
	}
}

func convertAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	var r *render.Renderer
	if !c.Bool("quiet") {
		if r, err = render.NewRenderer(c); err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
	}
	if c.Bool("tui") && !isStderrTTY() {
		return cli.Exit("--tui requires an interactive terminal", exitUsage)
	}

	files, err := readFiles(c.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	pattern, err := resolvePattern(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	quality, err := resolveQuality(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()

	saver, err := buildSaver(ctx, parseOutputConfig(c, cfg))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid output config: %v", err), exitUsage)
	}
	notifier, err := buildAdapter(c, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid adapter config: %v", err), exitUsage)
	}

	logger := log.NewNop()
	if !c.Bool("quiet") {
		logger = log.NewLogger(log.SessionMeta{})
	}

	sess, err := session.New(session.Config{
		Endpoint: resolveEndpoint(c, cfg),
		Quality:  quality,
		Pattern:  pattern,
		Saver:    saver,
		Adapter:  notifier,
		Logger:   logger,
	})
	if err != nil {
		if notifier != nil {
			_ = notifier.Close()
		}
		return cli.Exit(err.Error(), exitUsage)
	}
	defer func() { _ = sess.Close(context.Background()) }()

	if err := selectBatch(ctx, sess, files, c.IntSlice("exclude")); err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	start := time.Now()
	converted, err := sess.Convert(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("conversion failed: %s", conversionMessage(err)), convertExitCode(err))
	}

	resp := ConvertResponse{
		SessionID: sess.ID(),
		Endpoint:  sess.Endpoint(),
		Files:     len(sess.Files()),
	}
	for _, res := range converted {
		resp.Results = append(resp.Results, res.Name)
		resp.Bundle = resp.Bundle || res.IsBundle
	}

	switch {
	case c.Bool("tui"):
		if err := tui.Run(ctx, sess); err != nil {
			return cli.Exit(fmt.Sprintf("results browser failed: %v", err), exitDownload)
		}
		if sess.Stats().DownloadsFailed > 0 {
			return cli.Exit("", exitDownload)
		}
		return nil
	case c.Bool("individual"):
		for i := range converted {
			saved, err := sess.Download(ctx, i)
			if err != nil {
				return cli.Exit(fmt.Sprintf("download failed: %v", err), exitDownload)
			}
			resp.Saved = append(resp.Saved, saved.Location)
		}
	default:
		saved, err := sess.DownloadAll(ctx)
		if err != nil {
			return cli.Exit(fmt.Sprintf("download failed: %v", err), exitDownload)
		}
		resp.Saved = append(resp.Saved, saved.Location)
		resp.Skipped = saved.Skipped
	}
	resp.Duration = time.Since(start).Round(time.Millisecond).String()

	if r == nil {
		return nil
	}
	return r.Render(resp)
}

// selectBatch selects files and drops the 1-based excluded positions.
// Removal runs from the highest position down so earlier indices stay valid.
func selectBatch(ctx context.Context, sess *session.Session, files []types.RawFile, exclude []int) error {
	n, err := sess.Select(ctx, files)
	if err != nil {
		return fmt.Errorf("select files: %w", err)
	}

	positions := append([]int(nil), exclude...)
	sort.Sort(sort.Reverse(sort.IntSlice(positions)))
	prev := 0
	for _, pos := range positions {
		if pos < 1 || pos > n {
			return fmt.Errorf("--exclude position %d out of range (1-%d)", pos, n)
		}
		if pos == prev {
			continue
		}
		sess.Remove(ctx, pos-1)
		prev = pos
	}
	if len(sess.Files()) == 0 {
		return request.ErrEmptyBatch
	}
	return nil
}

// conversionMessage returns the user-facing text of a convert failure.
func conversionMessage(err error) string {
	var ce *client.ConversionError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// convertExitCode maps a Convert failure to an exit code.
func convertExitCode(err error) int {
	var ce *client.ConversionError
	switch {
	case errors.As(err, &ce):
		return exitConversion
	case errors.Is(err, request.ErrEmptyBatch), errors.Is(err, session.ErrSubmissionInFlight):
		return exitUsage
	default:
		return exitConversion
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
