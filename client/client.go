// Package client performs the multipart exchange with the conversion
// service and classifies its response.
//
// The service answers one submission with exactly one body: either an
// archive of every converted image or a single converted file. Both are
// wrapped as a single ConvertedResult whose content is a result handle.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync"

	"github.com/pithecene-io/webpify/handle"
	"github.com/pithecene-io/webpify/iox"
	"github.com/pithecene-io/webpify/types"
)

// ErrBusy is returned when Submit is called while a submission is in flight.
var ErrBusy = errors.New("a submission is already in flight")

// State is the submission lifecycle.
type State int

const (
	// StateIdle means no submission has been made.
	StateIdle State = iota
	// StateSubmitting means a request is in flight.
	StateSubmitting
	// StateSucceeded means the last submission produced a result.
	StateSucceeded
	// StateFailed means the last submission produced a ConversionError.
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Client submits conversion requests to a fixed convert URL.
type Client struct {
	// URL is the full convert URL (see endpoint.ConvertURL).
	URL string
	// HTTPClient defaults to http.DefaultClient. No timeout is set beyond
	// the transport's own.
	HTTPClient *http.Client
	// Handles receives response bodies. Required.
	Handles *handle.Registry

	mu    sync.Mutex
	state State
}

// New creates a client for the given convert URL.
func New(url string, handles *handle.Registry) *Client {
	return &Client{URL: url, Handles: handles}
}

// State returns the current submission state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrBusy
	}
	c.state = StateSubmitting
	return nil
}

func (c *Client) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		return
	}
	c.state = StateSucceeded
}

// Submit sends req as one multipart POST and returns the classified
// result. Failures are returned as *ConversionError, except ErrBusy.
// No retries are performed.
func (c *Client) Submit(ctx context.Context, req *types.ConversionRequest) ([]types.ConvertedResult, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	results, err := c.submit(ctx, req)
	c.finish(err)
	return results, err
}

func (c *Client) submit(ctx context.Context, req *types.ConversionRequest) ([]types.ConvertedResult, error) {
	body, contentType, err := EncodeMultipart(req)
	if err != nil {
		return nil, &ConversionError{Message: err.Error(), Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &ConversionError{Message: err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, &ConversionError{Message: err.Error(), Err: err}
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp)
	}

	result, err := c.classify(ctx, resp)
	if err != nil {
		return nil, &ConversionError{StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}
	return []types.ConvertedResult{result}, nil
}

// classify wraps the body as a bundle when the media type is the archive
// type and as a single named file otherwise.
func (c *Client) classify(ctx context.Context, resp *http.Response) (types.ConvertedResult, error) {
	h, err := c.Handles.Acquire(ctx, handle.KindResult, resp.Body)
	if err != nil {
		return types.ConvertedResult{}, fmt.Errorf("read response body: %w", err)
	}

	if IsArchive(resp.Header.Get("Content-Type")) {
		return types.ConvertedResult{
			Name:      types.ArchiveName,
			SizeBytes: h.Size(),
			Content:   h,
			IsBundle:  true,
		}, nil
	}

	name, ok := FilenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if !ok {
		name = types.DefaultResultName
	}
	return types.ConvertedResult{
		Name:      name,
		SizeBytes: h.Size(),
		Content:   h,
	}, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// IsArchive reports whether contentType names the archive media type.
// Parameters are ignored.
func IsArchive(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.EqualFold(mediaType, types.ArchiveMediaType)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EncodeMultipart renders req as a multipart form with one "files" part
// per input and a "quality" field.
func EncodeMultipart(req *types.ConversionRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range req.Parts {
		if err := writeFilePart(w, p); err != nil {
			return nil, "", err
		}
	}
	if err := w.WriteField("quality", strconv.Itoa(req.Quality)); err != nil {
		return nil, "", fmt.Errorf("write quality field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, p types.RequestPart) error {
	mimeType := p.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(p.Filename)))
	header.Set("Content-Type", mimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part %s: %w", p.Filename, err)
	}
	if p.Content == nil {
		return nil
	}

	rc, err := p.Content.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", p.Filename, err)
	}
	defer iox.DiscardClose(rc)

	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("read %s: %w", p.Filename, err)
	}
	return nil
}
