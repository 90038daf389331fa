// Package naming generates output filenames for converted images.
//
// Generation is a pure function of the original name, the file's index in
// the batch, the batch size and an optional RenamePattern. The OriginalName
// and SequentialNumber templates are deterministic. Date, Time and
// RandomToken read the clock or a random source, both injectable on Engine.
package naming

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"

	"github.com/pithecene-io/webpify/types"
)

// tokenAlphabet matches a lowercase base36 rendering.
const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// tokenLength is the length of RandomToken names.
const tokenLength = 6

// numberWidth is the zero-padding width for SequentialNumber. Numbers wider
// than this are written in full, not truncated.
const numberWidth = 3

var extPattern = regexp.MustCompile(`\.[^/.]+$`)

// StripExtension removes the final extension from name ("a.b.png" -> "a.b").
func StripExtension(name string) string {
	return extPattern.ReplaceAllString(name, "")
}

// Engine generates filenames. The zero value uses the wall clock and the
// global random source.
type Engine struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// Rand supplies RandomToken characters. Defaults to the global source.
	Rand *rand.Rand
}

// New returns an engine using the wall clock and the global random source.
func New() *Engine {
	return &Engine{}
}

// Generate returns the output filename for the file at index in a batch of
// batchSize files. A nil pattern keeps the original base name.
func (e *Engine) Generate(originalName string, index, batchSize int, pattern *types.RenamePattern) string {
	base := StripExtension(originalName)
	if pattern == nil {
		return base + types.TargetExtension
	}

	p := pattern.Normalized()
	name := p.Prefix

	switch p.Template {
	case types.TemplateOriginalName:
		name += base
	case types.TemplateSequentialNumber:
		name += fmt.Sprintf("%0*d", numberWidth, p.StartNumber+index)
	case types.TemplateDate:
		name += e.now().UTC().Format(time.DateOnly)
		name += batchOrdinal(index, batchSize)
	case types.TemplateTime:
		name += e.now().Format("15-04-05")
		name += batchOrdinal(index, batchSize)
	case types.TemplateRandomToken:
		name += e.token()
	}

	return name + p.Suffix + types.TargetExtension
}

// Preview returns sample names for the rename panel: the first file, and
// for sequential numbering in a multi-file batch, the second.
func (e *Engine) Preview(pattern types.RenamePattern, batchSize int) []string {
	p := pattern.Normalized()
	if p.Template == types.TemplateRandomToken {
		return []string{p.Prefix + "a1b2c3" + p.Suffix + types.TargetExtension}
	}

	// Date and Time previews omit the _N ordinal.
	names := []string{e.Generate("image", 0, 1, &p)}
	if batchSize > 1 && p.Template == types.TemplateSequentialNumber {
		names = append(names, e.Generate("image", 1, batchSize, &p))
	}
	return names
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) token() string {
	intN := rand.IntN
	if e.Rand != nil {
		intN = e.Rand.IntN
	}
	buf := make([]byte, tokenLength)
	for i := range buf {
		buf[i] = tokenAlphabet[intN(len(tokenAlphabet))]
	}
	return string(buf)
}

// batchOrdinal is "_<index+1>" for multi-file batches, "" otherwise.
func batchOrdinal(index, batchSize int) string {
	if batchSize > 1 {
		return "_" + strconv.Itoa(index+1)
	}
	return ""
}
