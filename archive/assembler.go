// Package archive packages individually returned results into one zip.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/pithecene-io/webpify/iox"
	"github.com/pithecene-io/webpify/log"
	"github.com/pithecene-io/webpify/types"
)

// Report lists the results left out of an archive.
type Report struct {
	Added   []string
	Skipped []string
}

// Assembler writes results into a deflated zip archive.
type Assembler struct {
	Logger *log.Logger
	// Now stamps member modification times. Defaults to time.Now.
	Now func() time.Time
}

// Assemble re-acquires each result's content in order and adds it under
// the result name. A result whose content cannot be opened or read is
// skipped and the remaining results are still added.
//
// Errors are returned only when the archive container itself fails.
func (a *Assembler) Assemble(ctx context.Context, results []types.ConvertedResult) ([]byte, Report, error) {
	var (
		buf    bytes.Buffer
		report Report
	)
	zw := zip.NewWriter(&buf)
	modified := a.now()

	for _, r := range results {
		data, err := a.read(ctx, r)
		if err != nil {
			a.logger().Warn("skipping archive item", map[string]any{
				"name":  r.Name,
				"error": err.Error(),
			})
			report.Skipped = append(report.Skipped, r.Name)
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     r.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, report, fmt.Errorf("create archive member %s: %w", r.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, report, fmt.Errorf("write archive member %s: %w", r.Name, err)
		}
		report.Added = append(report.Added, r.Name)
	}

	if err := zw.Close(); err != nil {
		return nil, report, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), report, nil
}

// read fetches the full content before a member header is written, so a
// failed read leaves no partial member behind.
func (a *Assembler) read(ctx context.Context, r types.ConvertedResult) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Content == nil {
		return nil, fmt.Errorf("result %s has no content", r.Name)
	}
	rc, err := r.Content.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(rc)
	return io.ReadAll(rc)
}

func (a *Assembler) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Assembler) logger() *log.Logger {
	if a.Logger == nil {
		return log.NewNop()
	}
	return a.Logger
}
