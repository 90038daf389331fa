package client

import "regexp"

var dispositionFilename = regexp.MustCompile(`filename="?([^"]+)"?`)

// FilenameFromDisposition extracts the suggested filename from a
// Content-Disposition header. ok is false when the header is absent or
// carries no filename.
func FilenameFromDisposition(header string) (name string, ok bool) {
	m := dispositionFilename.FindStringSubmatch(header)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}
