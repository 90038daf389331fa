// Package endpoint resolves the conversion service URL.
//
// Resolution is an injected strategy: an explicit URL from configuration
// wins, and host inference picks between the production and local
// development services when nothing was configured.
package endpoint

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// Known service locations.
const (
	ProductionURL  = "https://webpify-fpst.onrender.com"
	DevelopmentURL = "http://localhost:8000"
	ConvertPath    = "/api/convert"
	HealthPath     = "/api/health"
)

var (
	// ErrNotConfigured is returned when no provider yields a URL.
	ErrNotConfigured = errors.New("conversion endpoint not configured")
	// ErrInvalidURL is returned for URLs without an http(s) scheme.
	ErrInvalidURL = errors.New("invalid endpoint URL")
)

// Provider yields a service base or convert URL.
type Provider interface {
	Resolve() (string, error)
}

// Explicit is a configured URL. The empty string is not configured.
type Explicit string

// Resolve implements Provider.
func (e Explicit) Resolve() (string, error) {
	s := strings.TrimSpace(string(e))
	if s == "" {
		return "", ErrNotConfigured
	}
	return s, nil
}

// HostInference picks Development when Host is a local host name and
// Production otherwise.
type HostInference struct {
	// Host is the deployment host. Empty means os.Hostname().
	Host        string
	Production  string
	Development string
}

// DefaultInference returns host inference against the known services.
func DefaultInference(host string) HostInference {
	return HostInference{Host: host, Production: ProductionURL, Development: DevelopmentURL}
}

// Resolve implements Provider.
func (h HostInference) Resolve() (string, error) {
	host := h.Host
	if host == "" {
		host, _ = os.Hostname()
	}
	target := h.Production
	if IsLocalHost(host) {
		target = h.Development
	}
	if target == "" {
		return "", ErrNotConfigured
	}
	return target, nil
}

// IsLocalHost reports whether host names the local machine.
func IsLocalHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host == "localhost" || host == "127.0.0.1"
}

// Chain tries each provider in order and returns the first URL.
type Chain []Provider

// Resolve implements Provider.
func (c Chain) Resolve() (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		u, err := p.Resolve()
		if errors.Is(err, ErrNotConfigured) {
			continue
		}
		return u, err
	}
	return "", ErrNotConfigured
}

// ConvertURL resolves p and appends ConvertPath unless already present,
// with exactly one separator between base and path.
func ConvertURL(p Provider) (string, error) {
	base, err := resolveBase(p)
	if err != nil {
		return "", err
	}
	return base + ConvertPath, nil
}

// HealthURL resolves p and derives the health check URL.
func HealthURL(p Provider) (string, error) {
	base, err := resolveBase(p)
	if err != nil {
		return "", err
	}
	return base + HealthPath, nil
}

func resolveBase(p Provider) (string, error) {
	if p == nil {
		return "", ErrNotConfigured
	}
	raw, err := p.Resolve()
	if err != nil {
		return "", err
	}
	return Normalize(raw)
}

// Normalize validates raw and returns the service base URL without a
// trailing separator or convert path.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || (!strings.EqualFold(scheme, "http") && !strings.EqualFold(scheme, "https")) {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	rest = strings.TrimRight(rest, "/")
	rest = strings.TrimSuffix(rest, ConvertPath)
	rest = strings.TrimRight(rest, "/")
	if rest == "" || strings.HasPrefix(rest, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return scheme + "://" + rest, nil
}
