package cmd

import (
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/urfave/cli/v2"

	redisadapter "github.com/pithecene-io/webpify/adapter/redis"
	"github.com/pithecene-io/webpify/adapter/webhook"
	"github.com/pithecene-io/webpify/cli/config"
)

// newAdapterTestContext builds a CLI context with adapter-related flags.
func newAdapterTestContext(t *testing.T, flags map[string]string, headers []string) *cli.Context {
	t.Helper()
	app := cli.NewApp()
	app.Flags = adapterFlags()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("adapter", "", "")
	fs.String("adapter-url", "", "")
	fs.String("adapter-channel", "", "")
	fs.String("adapter-latest-key", "", "")
	fs.Duration("adapter-timeout", 10*time.Second, "")
	fs.Int("adapter-retries", 3, "")
	fs.Var(cli.NewStringSlice(), "adapter-header", "")

	for name, val := range flags {
		if err := fs.Set(name, val); err != nil {
			t.Fatalf("failed to set flag %s: %v", name, err)
		}
	}
	for _, h := range headers {
		if err := fs.Set("adapter-header", h); err != nil {
			t.Fatalf("failed to set header %s: %v", h, err)
		}
	}
	return cli.NewContext(app, fs, nil)
}

func TestParseAdapterConfig_WebhookValid(t *testing.T) {
	c := newAdapterTestContext(t, map[string]string{
		"adapter-url": "https://hooks.example.com/webpify",
	}, nil)

	ac, err := parseAdapterConfigWithPrecedence(c, nil, "webhook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ac.adapterType != "webhook" {
		t.Errorf("adapterType = %q, want %q", ac.adapterType, "webhook")
	}
	if ac.url != "https://hooks.example.com/webpify" {
		t.Errorf("url = %q", ac.url)
	}
	if ac.timeout != 10*time.Second || ac.retries != 3 {
		t.Errorf("timeout/retries = %v/%d, want flag defaults", ac.timeout, ac.retries)
	}
}

func TestParseAdapterConfig_MissingURL(t *testing.T) {
	for _, typ := range []string{"webhook", "redis"} {
		t.Run(typ, func(t *testing.T) {
			c := newAdapterTestContext(t, nil, nil)
			_, err := parseAdapterConfigWithPrecedence(c, nil, typ)
			if err == nil {
				t.Fatal("expected error for missing URL")
			}
			if !strings.Contains(err.Error(), "--adapter-url is required when --adapter="+typ) {
				t.Errorf("error should mention the URL requirement, got: %v", err)
			}
		})
	}
}

func TestParseAdapterConfig_UnknownType(t *testing.T) {
	c := newAdapterTestContext(t, map[string]string{"adapter-url": "https://example.com"}, nil)

	_, err := parseAdapterConfigWithPrecedence(c, nil, "kafka")
	if err == nil {
		t.Fatal("expected error for unknown adapter type")
	}
	if !strings.Contains(err.Error(), "unknown adapter type") || !strings.Contains(err.Error(), "kafka") {
		t.Errorf("error should name the bad type, got: %v", err)
	}
}

func TestParseAdapterConfig_ConfigValues(t *testing.T) {
	retries := 5
	cfg := &config.Config{
		Adapter: config.AdapterConfig{
			URL:       "redis://from-config:6379",
			Channel:   "cfg-channel",
			LatestKey: "cfg-latest",
			Timeout:   config.Duration{Duration: 2 * time.Second},
			Retries:   &retries,
		},
	}
	c := newAdapterTestContext(t, nil, nil)

	ac, err := parseAdapterConfigWithPrecedence(c, cfg, "redis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ac.url != "redis://from-config:6379" || ac.channel != "cfg-channel" || ac.latestKey != "cfg-latest" {
		t.Errorf("choice = %+v", ac)
	}
	if ac.timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", ac.timeout)
	}
	if ac.retries != 5 {
		t.Errorf("retries = %d, want 5", ac.retries)
	}
}

func TestParseAdapterConfig_CLIOverridesConfig(t *testing.T) {
	retries := 5
	cfg := &config.Config{
		Adapter: config.AdapterConfig{URL: "https://config.example.com", Retries: &retries},
	}
	c := newAdapterTestContext(t, map[string]string{
		"adapter-url":     "https://cli.example.com",
		"adapter-retries": "0",
	}, nil)

	ac, err := parseAdapterConfigWithPrecedence(c, cfg, "webhook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ac.url != "https://cli.example.com" {
		t.Errorf("url = %q, want CLI value", ac.url)
	}
	if ac.retries != 0 {
		t.Errorf("retries = %d, want explicit 0", ac.retries)
	}
}

func TestParseAdapterConfig_HeadersMerged(t *testing.T) {
	cfg := &config.Config{
		Adapter: config.AdapterConfig{
			URL:     "https://hooks.example.com",
			Headers: map[string]string{"Authorization": "Bearer cfg", "X-Team": "img"},
		},
	}
	c := newAdapterTestContext(t, nil, []string{"Authorization=Bearer cli", "X-Extra=1"})

	ac, err := parseAdapterConfigWithPrecedence(c, cfg, "webhook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{
		"Authorization": "Bearer cli",
		"X-Team":        "img",
		"X-Extra":       "1",
	}
	for k, v := range want {
		if ac.headers[k] != v {
			t.Errorf("header %s = %q, want %q", k, ac.headers[k], v)
		}
	}
}

func TestParseAdapterConfig_MalformedHeader(t *testing.T) {
	c := newAdapterTestContext(t, map[string]string{"adapter-url": "https://hooks.example.com"}, []string{"no-separator"})

	_, err := parseAdapterConfigWithPrecedence(c, nil, "webhook")
	if err == nil || !strings.Contains(err.Error(), "key=value") {
		t.Errorf("error = %v, want key=value hint", err)
	}
}

func TestBuildAdapter_None(t *testing.T) {
	c := newAdapterTestContext(t, nil, nil)
	a, err := buildAdapter(c, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Errorf("adapter = %T, want nil", a)
	}
}

func TestBuildAdapter_Webhook(t *testing.T) {
	c := newAdapterTestContext(t, map[string]string{
		"adapter":     "webhook",
		"adapter-url": "https://hooks.example.com",
	}, nil)
	a, err := buildAdapter(c, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = a.Close() }()
	if _, ok := a.(*webhook.Adapter); !ok {
		t.Errorf("adapter = %T, want *webhook.Adapter", a)
	}
}

func TestBuildAdapter_RedisFromConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Adapter: config.AdapterConfig{Type: "redis", URL: "redis://" + mr.Addr()},
	}
	c := newAdapterTestContext(t, nil, nil)

	a, err := buildAdapter(c, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = a.Close() }()
	if _, ok := a.(*redisadapter.Adapter); !ok {
		t.Errorf("adapter = %T, want *redis.Adapter", a)
	}
}
