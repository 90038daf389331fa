// Package types defines the core domain types for batch WebP conversion.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pithecene-io/webpify/handle"
)

// Conversion constants shared by the client, builder and dispatcher.
const (
	// TargetExtension is appended to every generated filename.
	TargetExtension = ".webp"
	// DefaultQuality is the WebP quality sent when none is configured.
	DefaultQuality = 85
	// MinQuality and MaxQuality bound the quality parameter.
	MinQuality = 1
	MaxQuality = 100
	// ArchiveName is the filename used for every bundle download.
	ArchiveName = "WebPify_converted_images.zip"
	// ArchiveMediaType is the content type the service uses for bundles.
	ArchiveMediaType = "application/zip"
	// DefaultResultName is used when a single-file response carries no
	// usable disposition filename.
	DefaultResultName = "converted_image.webp"
)

// SupportedExtensions are the input formats the conversion service accepts.
// Used for advisory warnings only; nothing is rejected client-side.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif", ".gif", ".webp"}

// IsSupportedImage reports whether name has an extension the service accepts.
func IsSupportedImage(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range SupportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Source opens the binary content of an input file.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FileSource reads content from a path on disk each time it is opened.
type FileSource string

// Open implements Source.
func (p FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// BytesSource serves content from memory.
type BytesSource []byte

// Open implements Source.
func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// RawFile is an input as handed over by a picker, before selection.
type RawFile struct {
	Name     string
	Size     int64
	MimeType string
	Source   Source
}

// RawFileFromPath describes a file on disk. The MIME type is inferred from
// the extension and may be empty.
func RawFileFromPath(path string) (RawFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return RawFile{}, err
	}
	return RawFile{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: MimeTypeFor(path),
		Source:   FileSource(path),
	}, nil
}

// MimeTypeFor returns the image MIME type for a filename extension,
// or "" when the extension is not a known image type.
func MimeTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}

// SelectedFile is one entry of the current batch.
type SelectedFile struct {
	OriginalName string
	SizeBytes    int64
	MimeType     string
	// Content is owned by the selection store until the batch is submitted.
	Content Source
	// Preview is a transient in-memory view used for display only.
	Preview *handle.Handle
}

// RequestPart is one file of an outbound conversion request.
type RequestPart struct {
	Filename string
	MimeType string
	Content  Source
}

// ConversionRequest is the payload of one submission.
type ConversionRequest struct {
	Parts   []RequestPart
	Quality int
}

// Filenames returns the renamed filenames in request order.
func (r *ConversionRequest) Filenames() []string {
	names := make([]string, len(r.Parts))
	for i, p := range r.Parts {
		names[i] = p.Filename
	}
	return names
}

// ConvertedResult is one converted output held by the result store.
type ConvertedResult struct {
	Name      string
	SizeBytes int64
	// Content is owned by the result store and released when it is cleared.
	Content *handle.Handle
	// IsBundle is true when Content is an archive produced by the service.
	IsBundle bool
}
