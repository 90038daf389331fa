package cmd

import (
	"testing"
	"time"

	"github.com/pithecene-io/webpify/naming"
)

func TestPatternRows(t *testing.T) {
	e := &naming.Engine{Now: func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }}
	rows := patternRows(e, "pre_", "", 7, 3)

	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	byTemplate := make(map[string]PatternRow, len(rows))
	for _, r := range rows {
		if r.Description == "" {
			t.Errorf("template %s has no description", r.Template)
		}
		byTemplate[r.Template] = r
	}

	number := byTemplate["number"].Examples
	if len(number) != 2 || number[0] != "pre_007.webp" || number[1] != "pre_008.webp" {
		t.Errorf("number examples = %v", number)
	}
	if got := byTemplate["name"].Examples; len(got) != 1 || got[0] != "pre_image.webp" {
		t.Errorf("name examples = %v", got)
	}
	if got := byTemplate["date"].Examples; len(got) != 1 || got[0] != "pre_2024-03-09.webp" {
		t.Errorf("date examples = %v", got)
	}
	if got := byTemplate["random"].Examples; len(got) != 1 || got[0] != "pre_a1b2c3.webp" {
		t.Errorf("random examples = %v", got)
	}
}

func TestPatternsCommand_BadBatchSize(t *testing.T) {
	err := newTestApp().Run([]string{"webpify", "patterns", "--format", "json", "--batch-size", "0"})
	if code := exitCode(t, err); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
}
