package types

import (
	"fmt"
	"strings"
)

// Template selects how generated filenames are built.
type Template string

const (
	// TemplateOriginalName keeps the original base name.
	TemplateOriginalName Template = "name"
	// TemplateSequentialNumber numbers files from StartNumber, zero-padded to 3 digits.
	TemplateSequentialNumber Template = "number"
	// TemplateDate uses the current calendar date (YYYY-MM-DD).
	TemplateDate Template = "date"
	// TemplateTime uses the current time (HH-MM-SS).
	TemplateTime Template = "time"
	// TemplateRandomToken uses a 6 character alphanumeric token.
	TemplateRandomToken Template = "random"
)

// Templates lists every template in panel order.
var Templates = []Template{
	TemplateOriginalName,
	TemplateSequentialNumber,
	TemplateDate,
	TemplateTime,
	TemplateRandomToken,
}

// Description returns the human-readable label for t.
func (t Template) Description() string {
	switch t {
	case TemplateOriginalName:
		return "Original filename"
	case TemplateSequentialNumber:
		return "Sequential number (1, 2, 3...)"
	case TemplateDate:
		return "Current date (YYYY-MM-DD)"
	case TemplateTime:
		return "Current time (HH-MM-SS)"
	case TemplateRandomToken:
		return "Random string (6 chars)"
	default:
		return ""
	}
}

// Valid reports whether t is one of Templates.
func (t Template) Valid() bool {
	for _, known := range Templates {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTemplate accepts a template name with or without braces
// ("number" or "{number}"), case-insensitively.
func ParseTemplate(s string) (Template, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
	for _, t := range Templates {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid rename pattern: %q (must be name, number, date, time, or random)", s)
}

// RenamePattern configures generated output filenames.
// A nil *RenamePattern means "preserve the original base name".
type RenamePattern struct {
	Template    Template `json:"template" yaml:"template"`
	Prefix      string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix      string   `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	StartNumber int      `json:"start_number,omitempty" yaml:"start_number,omitempty"`
}

// Validate checks that exactly one known template is selected and that
// StartNumber is at least 1 for sequential numbering.
func (p *RenamePattern) Validate() error {
	if !p.Template.Valid() {
		return fmt.Errorf("invalid rename pattern: %q", p.Template)
	}
	if p.Template == TemplateSequentialNumber && p.StartNumber < 1 {
		return fmt.Errorf("start number must be >= 1, got %d", p.StartNumber)
	}
	return nil
}

// Normalized returns a copy with StartNumber defaulted to 1 when unset or
// below 1.
func (p RenamePattern) Normalized() RenamePattern {
	if p.StartNumber < 1 {
		p.StartNumber = 1
	}
	return p
}
