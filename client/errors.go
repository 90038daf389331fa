package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of a failure response is read.
const maxErrorBody = 64 << 10

// ConversionError is a transport failure or a non-success response.
// StatusCode is 0 when no response was received.
type ConversionError struct {
	StatusCode int
	// Message is the text shown to the user.
	Message string
	Err     error
}

func (e *ConversionError) Error() string {
	return e.Message
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// errorFromResponse builds a ConversionError from a non-2xx response,
// preferring the service's "detail" text.
func errorFromResponse(resp *http.Response) *ConversionError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg, ok := ParseDetail(body)
	if !ok {
		msg = fmt.Sprintf("Server error: %d", resp.StatusCode)
	}
	return &ConversionError{StatusCode: resp.StatusCode, Message: msg}
}

// ParseDetail extracts the user-facing message from an error body.
// A string "detail" is returned as is. A validation list of objects with
// "msg" fields is joined with "; ".
func ParseDetail(body []byte) (string, bool) {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		if s == "" {
			return "", false
		}
		return s, true
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err != nil {
		return "", false
	}
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg != "" {
			msgs = append(msgs, it.Msg)
		}
	}
	if len(msgs) == 0 {
		return "", false
	}
	return strings.Join(msgs, "; "), true
}
