package types //nolint:revive // types is a valid package name

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestIsSupportedImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"PHOTO.JPG", true},
		{"scan.tiff", true},
		{"anim.gif", true},
		{"already.webp", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSupportedImage(tt.name); got != tt.want {
				t.Errorf("IsSupportedImage(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestMimeTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.png":  "image/png",
		"a.JPEG": "image/jpeg",
		"a.jpg":  "image/jpeg",
		"a.tif":  "image/tiff",
		"a.bmp":  "image/bmp",
		"a.webp": "image/webp",
		"a.txt":  "",
	}
	for name, want := range tests {
		if got := MimeTypeFor(name); got != want {
			t.Errorf("MimeTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestRawFileFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.jpg")
	if err := os.WriteFile(path, []byte("jpegdata"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := RawFileFromPath(path)
	if err != nil {
		t.Fatalf("RawFileFromPath: %v", err)
	}
	if f.Name != "cat.jpg" {
		t.Errorf("Name = %q, want cat.jpg", f.Name)
	}
	if f.Size != 8 {
		t.Errorf("Size = %d, want 8", f.Size)
	}
	if f.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q, want image/jpeg", f.MimeType)
	}

	rc, err := f.Source.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "jpegdata" {
		t.Errorf("content = %q", data)
	}
}

func TestRawFileFromPath_Missing(t *testing.T) {
	if _, err := RawFileFromPath(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConversionRequest_Filenames(t *testing.T) {
	req := &ConversionRequest{Parts: []RequestPart{{Filename: "a.webp"}, {Filename: "b.webp"}}}
	got := req.Filenames()
	if len(got) != 2 || got[0] != "a.webp" || got[1] != "b.webp" {
		t.Errorf("Filenames() = %v", got)
	}
}
