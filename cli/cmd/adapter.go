package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webpify/adapter"
	redisadapter "github.com/pithecene-io/webpify/adapter/redis"
	"github.com/pithecene-io/webpify/adapter/webhook"
	"github.com/pithecene-io/webpify/cli/config"
)

// adapterChoice holds parsed notification adapter configuration.
type adapterChoice struct {
	adapterType string
	url         string
	channel     string
	latestKey   string
	headers     map[string]string
	timeout     time.Duration
	retries     int
}

func adapterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Notification adapter: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Webhook URL or Redis connection URL",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis pub/sub channel (default: " + redisadapter.DefaultChannel + ")",
		},
		&cli.StringFlag{
			Name:  "adapter-latest-key",
			Usage: "Redis key that keeps the last event (optional)",
		},
		&cli.StringSliceFlag{
			Name:  "adapter-header",
			Usage: "Webhook header as key=value (repeatable)",
		},
		&cli.DurationFlag{
			Name:  "adapter-timeout",
			Usage: "Per-publish timeout",
			Value: 10 * time.Second,
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Retry attempts on publish failure",
			Value: 3,
		},
	}
}

// parseAdapterConfigWithPrecedence merges adapter flags over the config
// adapter section for the given adapter type.
func parseAdapterConfigWithPrecedence(c *cli.Context, cfg *config.Config, adapterType string) (*adapterChoice, error) {
	var ac config.AdapterConfig
	if cfg != nil {
		ac = cfg.Adapter
	}

	choice := &adapterChoice{
		adapterType: adapterType,
		url:         resolveString(c, "adapter-url", ac.URL),
		channel:     resolveString(c, "adapter-channel", ac.Channel),
		latestKey:   resolveString(c, "adapter-latest-key", ac.LatestKey),
		timeout:     resolveDuration(c, "adapter-timeout", ac.Timeout.Duration),
		retries:     c.Int("adapter-retries"),
		headers:     make(map[string]string),
	}
	if !c.IsSet("adapter-retries") && ac.Retries != nil {
		choice.retries = *ac.Retries
	}

	for k, v := range ac.Headers {
		choice.headers[k] = v
	}
	for _, h := range c.StringSlice("adapter-header") {
		k, v, ok := strings.Cut(h, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q (must be key=value)", h)
		}
		choice.headers[strings.TrimSpace(k)] = v
	}

	switch adapterType {
	case "webhook":
		if choice.url == "" {
			return nil, fmt.Errorf("--adapter-url is required when --adapter=webhook")
		}
	case "redis":
		if choice.url == "" {
			return nil, fmt.Errorf("--adapter-url is required when --adapter=redis")
		}
	default:
		return nil, fmt.Errorf("unknown adapter type %q (must be webhook or redis)", adapterType)
	}
	if choice.retries < 0 {
		return nil, fmt.Errorf("--adapter-retries must be >= 0, got %d", choice.retries)
	}
	return choice, nil
}

// buildAdapter returns nil when no adapter type is configured.
func buildAdapter(c *cli.Context, cfg *config.Config) (adapter.Adapter, error) {
	adapterType := resolveString(c, "adapter", configVal(cfg, func(c *config.Config) string { return c.Adapter.Type }))
	if adapterType == "" {
		return nil, nil
	}
	choice, err := parseAdapterConfigWithPrecedence(c, cfg, adapterType)
	if err != nil {
		return nil, err
	}

	switch choice.adapterType {
	case "webhook":
		a, err := webhook.New(webhook.Config{
			URL:     choice.url,
			Headers: choice.headers,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		a, err := redisadapter.New(redisadapter.Config{
			URL:       choice.url,
			Channel:   choice.channel,
			LatestKey: choice.latestKey,
			Timeout:   choice.timeout,
			Retries:   choice.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}
