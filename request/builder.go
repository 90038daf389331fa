// Package request assembles conversion requests from a selected batch.
package request

import (
	"errors"
	"strconv"
	"strings"

	"github.com/pithecene-io/webpify/log"
	"github.com/pithecene-io/webpify/naming"
	"github.com/pithecene-io/webpify/types"
)

// ErrEmptyBatch is returned when building a request from zero files.
var ErrEmptyBatch = errors.New("cannot build conversion request: no files selected")

// Builder turns a batch snapshot into a ConversionRequest.
type Builder struct {
	// Naming generates filenames. Defaults to naming.New().
	Naming *naming.Engine
	// Quality is sent with every request. 0 means types.DefaultQuality;
	// other values are clamped to [1, 100].
	Quality int
	// Logger receives collision warnings. Defaults to a no-op logger.
	Logger *log.Logger
}

// Build names each file in order and pairs the name with the file's
// unchanged content and MIME type. Only filenames are rewritten.
//
// Names produced twice within the batch are made unique by inserting
// "_2", "_3", ... before the extension.
func (b *Builder) Build(files []types.SelectedFile, pattern *types.RenamePattern) (*types.ConversionRequest, error) {
	if len(files) == 0 {
		return nil, ErrEmptyBatch
	}

	engine := b.Naming
	if engine == nil {
		engine = naming.New()
	}

	parts := make([]types.RequestPart, 0, len(files))
	seen := make(map[string]int, len(files))
	for i, f := range files {
		name := engine.Generate(f.OriginalName, i, len(files), pattern)
		if unique := dedupe(name, seen); unique != name {
			b.logger().Warn("filename collision", map[string]any{
				"index":    i,
				"original": f.OriginalName,
				"name":     name,
				"renamed":  unique,
			})
			name = unique
		}
		parts = append(parts, types.RequestPart{
			Filename: name,
			MimeType: f.MimeType,
			Content:  f.Content,
		})
	}

	return &types.ConversionRequest{
		Parts:   parts,
		Quality: ClampQuality(b.Quality),
	}, nil
}

func (b *Builder) logger() *log.Logger {
	if b.Logger == nil {
		return log.NewNop()
	}
	return b.Logger
}

// ClampQuality maps 0 to the default and clamps other values to [1, 100].
func ClampQuality(q int) int {
	switch {
	case q == 0:
		return types.DefaultQuality
	case q < types.MinQuality:
		return types.MinQuality
	case q > types.MaxQuality:
		return types.MaxQuality
	default:
		return q
	}
}

// dedupe returns name, or name with an ordinal before the extension if it
// was already produced. seen is updated with the returned name.
func dedupe(name string, seen map[string]int) string {
	if _, dup := seen[name]; !dup {
		seen[name] = 1
		return name
	}

	stem := strings.TrimSuffix(name, types.TargetExtension)
	for n := seen[name] + 1; ; n++ {
		candidate := stem + "_" + strconv.Itoa(n) + types.TargetExtension
		if _, taken := seen[candidate]; !taken {
			seen[name] = n
			seen[candidate] = 1
			return candidate
		}
	}
}
