// Package download saves converted results for the user.
//
// A single result, or a bundle the service already produced, is saved
// under its own name. Several individual results are first packaged by
// the archive assembler and saved under the fixed archive name.
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/pithecene-io/webpify/archive"
	"github.com/pithecene-io/webpify/handle"
	"github.com/pithecene-io/webpify/iox"
	"github.com/pithecene-io/webpify/log"
	"github.com/pithecene-io/webpify/types"
)

// ErrNothingToDownload is returned by DownloadAll for an empty result set.
var ErrNothingToDownload = errors.New("no results to download")

// Saved describes one completed save action.
type Saved struct {
	Name     string
	Location string
	// Skipped lists results left out of an assembled archive.
	Skipped []string
}

// Dispatcher triggers save actions for results.
type Dispatcher struct {
	Saver     Saver
	Assembler *archive.Assembler
	// Handles registers the transient archive handle. Defaults to a
	// private in-memory registry.
	Handles *handle.Registry
	Logger  *log.Logger
}

// DownloadOne saves result under its name.
func (d *Dispatcher) DownloadOne(ctx context.Context, result types.ConvertedResult) (Saved, error) {
	if result.Content == nil {
		return Saved{}, fmt.Errorf("result %s has no content", result.Name)
	}
	rc, err := result.Content.Open(ctx)
	if err != nil {
		return Saved{}, fmt.Errorf("open %s: %w", result.Name, err)
	}
	defer iox.DiscardClose(rc)

	loc, err := d.Saver.Save(ctx, result.Name, rc)
	if err != nil {
		return Saved{}, err
	}
	d.logger().Info("download saved", map[string]any{
		"name":     result.Name,
		"location": loc,
		"bundle":   result.IsBundle,
	})
	return Saved{Name: result.Name, Location: loc}, nil
}

// DownloadAll saves a lone result or bundle directly. Otherwise it
// assembles an archive, saves it as types.ArchiveName and releases the
// archive handle.
func (d *Dispatcher) DownloadAll(ctx context.Context, results []types.ConvertedResult) (Saved, error) {
	switch {
	case len(results) == 0:
		return Saved{}, ErrNothingToDownload
	case len(results) == 1:
		return d.DownloadOne(ctx, results[0])
	}

	data, report, err := d.assembler().Assemble(ctx, results)
	if err != nil {
		return Saved{}, err
	}

	h, err := d.handles().Acquire(ctx, handle.KindArchive, bytes.NewReader(data))
	if err != nil {
		return Saved{}, fmt.Errorf("register archive: %w", err)
	}
	defer func() {
		if err := h.Release(ctx); err != nil {
			d.logger().Warn("release archive handle", map[string]any{"error": err.Error()})
		}
	}()

	saved, err := d.DownloadOne(ctx, types.ConvertedResult{
		Name:      types.ArchiveName,
		SizeBytes: h.Size(),
		Content:   h,
		IsBundle:  true,
	})
	if err != nil {
		return Saved{}, err
	}
	saved.Skipped = report.Skipped
	return saved, nil
}

func (d *Dispatcher) assembler() *archive.Assembler {
	if d.Assembler == nil {
		d.Assembler = &archive.Assembler{Logger: d.Logger}
	}
	return d.Assembler
}

func (d *Dispatcher) handles() *handle.Registry {
	if d.Handles == nil {
		d.Handles = handle.NewRegistry()
	}
	return d.Handles
}

func (d *Dispatcher) logger() *log.Logger {
	if d.Logger == nil {
		return log.NewNop()
	}
	return d.Logger
}
