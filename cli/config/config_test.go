package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pithecene-io/webpify/types"
)

func TestLoad_FullConfig(t *testing.T) {
	yaml := `endpoint: https://webpify.example.com
deployment_host: webpify.example.com
quality: 70

rename:
  template: "{number}"
  prefix: img_
  suffix: _web
  start_number: 10

output:
  backend: s3
  path: my-bucket/converted
  region: us-east-1
  endpoint: https://r2.example.com
  s3_path_style: true

adapter:
  type: webhook
  url: https://hooks.example.com/webpify
  headers:
    Authorization: Bearer token123
  timeout: 10s
  retries: 3
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	assertEqual(t, "endpoint", cfg.Endpoint, "https://webpify.example.com")
	assertEqual(t, "deployment_host", cfg.DeploymentHost, "webpify.example.com")
	if cfg.Quality == nil || *cfg.Quality != 70 {
		t.Errorf("expected quality=70, got %v", cfg.Quality)
	}

	p, err := cfg.RenamePattern()
	if err != nil {
		t.Fatalf("RenamePattern: %v", err)
	}
	if p.Template != types.TemplateSequentialNumber || p.Prefix != "img_" || p.Suffix != "_web" || p.StartNumber != 10 {
		t.Errorf("rename = %+v", p)
	}

	assertEqual(t, "output.backend", cfg.Output.Backend, "s3")
	assertEqual(t, "output.path", cfg.Output.Path, "my-bucket/converted")
	assertEqual(t, "output.region", cfg.Output.Region, "us-east-1")
	assertEqual(t, "output.endpoint", cfg.Output.Endpoint, "https://r2.example.com")
	if !cfg.Output.S3PathStyle {
		t.Error("expected output.s3_path_style=true")
	}

	assertEqual(t, "adapter.type", cfg.Adapter.Type, "webhook")
	assertEqual(t, "adapter.url", cfg.Adapter.URL, "https://hooks.example.com/webpify")
	assertEqual(t, "adapter.headers.Authorization", cfg.Adapter.Headers["Authorization"], "Bearer token123")
	if cfg.Adapter.Timeout.Duration != 10*time.Second {
		t.Errorf("expected adapter.timeout=10s, got %v", cfg.Adapter.Timeout.Duration)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 3 {
		t.Error("expected adapter.retries=3")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	cfg, err := Load(writeTemp(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Quality != nil {
		t.Error("expected nil quality")
	}
	p, err := cfg.RenamePattern()
	if err != nil || p != nil {
		t.Errorf("RenamePattern = %v, %v; want nil, nil", p, err)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("WEBPIFY_ENDPOINT", "http://localhost:9000")
	t.Setenv("WEBPIFY_HOOK_TOKEN", "secret")

	yaml := `endpoint: ${WEBPIFY_ENDPOINT}
adapter:
  type: redis
  url: ${WEBPIFY_REDIS_URL_UNSET:-redis://localhost:6379/0}
  headers:
    Authorization: Bearer ${WEBPIFY_HOOK_TOKEN}
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "endpoint", cfg.Endpoint, "http://localhost:9000")
	assertEqual(t, "adapter.url", cfg.Adapter.URL, "redis://localhost:6379/0")
	assertEqual(t, "adapter.headers.Authorization", cfg.Adapter.Headers["Authorization"], "Bearer secret")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad yaml", "endpoint: [", "invalid YAML"},
		{"bad duration", "adapter:\n  timeout: soon\n", "invalid duration"},
		{"quality range", "quality: 120\n", "quality must be between"},
		{"unknown backend", "output:\n  backend: ftp\n", "unknown output backend"},
		{"s3 without path", "output:\n  backend: s3\n", "output.path"},
		{"unknown adapter", "adapter:\n  type: kafka\n", "unknown adapter type"},
		{"negative retries", "adapter:\n  type: webhook\n  retries: -1\n", "retries must be"},
		{"unknown template", "rename:\n  template: uuid\n", "invalid rename pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestLoadDefault_MissingIsEmpty(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadDefault(DefaultPath, false)
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.Endpoint != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}

	if _, err := LoadDefault(DefaultPath, true); err == nil {
		t.Error("expected error for explicit missing config")
	}
}

func TestLoadDefault_ReadsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, DefaultPath), []byte("endpoint: http://localhost:8000\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadDefault(DefaultPath, false)
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	assertEqual(t, "endpoint", cfg.Endpoint, "http://localhost:8000")
}

func TestRenamePattern_DefaultsStartNumber(t *testing.T) {
	cfg := &Config{Rename: &RenameConfig{Template: "number"}}
	p, err := cfg.RenamePattern()
	if err != nil {
		t.Fatalf("RenamePattern: %v", err)
	}
	if p.StartNumber != 1 {
		t.Errorf("StartNumber = %d, want 1", p.StartNumber)
	}
}

// writeTemp writes content to a temp file and returns the path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webpify.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}
