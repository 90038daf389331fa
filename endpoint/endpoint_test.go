package endpoint

import (
	"errors"
	"testing"
)

func TestConvertURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare base", "https://example.com", "https://example.com/api/convert"},
		{"trailing slash", "https://example.com/", "https://example.com/api/convert"},
		{"already convert", "https://example.com/api/convert", "https://example.com/api/convert"},
		{"convert with slash", "https://example.com/api/convert/", "https://example.com/api/convert"},
		{"with port", "http://localhost:8000", "http://localhost:8000/api/convert"},
		{"nested base", "https://example.com/webpify/", "https://example.com/webpify/api/convert"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertURL(Explicit(tt.in))
			if err != nil {
				t.Fatalf("ConvertURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("ConvertURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHealthURL(t *testing.T) {
	got, err := HealthURL(Explicit("https://example.com/api/convert"))
	if err != nil {
		t.Fatalf("HealthURL: %v", err)
	}
	if got != "https://example.com/api/health" {
		t.Errorf("HealthURL = %q", got)
	}
}

func TestConvertURL_Invalid(t *testing.T) {
	for _, in := range []string{"example.com", "ftp://example.com", "https://", "  "} {
		_, err := ConvertURL(Explicit(in))
		if err == nil {
			t.Errorf("ConvertURL(%q) succeeded, want error", in)
		}
	}
}

func TestExplicit_Empty(t *testing.T) {
	if _, err := Explicit("").Resolve(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestHostInference(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"localhost", DevelopmentURL},
		{"127.0.0.1", DevelopmentURL},
		{"localhost:3000", DevelopmentURL},
		{"LOCALHOST", DevelopmentURL},
		{"webpify.example.com", ProductionURL},
		{"192.168.1.5", ProductionURL},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			got, err := DefaultInference(tt.host).Resolve()
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestHostInference_Unset(t *testing.T) {
	h := HostInference{Host: "example.com"}
	if _, err := h.Resolve(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestChain(t *testing.T) {
	c := Chain{Explicit(""), nil, Explicit("https://configured.example"), DefaultInference("localhost")}
	got, err := c.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "https://configured.example" {
		t.Errorf("Resolve = %q, want configured URL", got)
	}

	got, err = Chain{Explicit(""), DefaultInference("localhost")}.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != DevelopmentURL {
		t.Errorf("Resolve = %q, want development", got)
	}

	if _, err := (Chain{}).Resolve(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("empty chain error = %v, want ErrNotConfigured", err)
	}
}

func TestConvertURL_NilProvider(t *testing.T) {
	if _, err := ConvertURL(nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}
