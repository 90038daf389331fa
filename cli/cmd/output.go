package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webpify/cli/config"
	"github.com/pithecene-io/webpify/download"
)

// outputChoice holds parsed download target configuration.
type outputChoice struct {
	backend   string // "fs" or "s3"
	path      string // fs: directory, s3: bucket/prefix
	region    string
	endpoint  string
	pathStyle bool
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "Save target (fs: directory, s3: bucket/prefix)",
			Value: ".",
		},
		&cli.StringFlag{
			Name:  "out-backend",
			Usage: "Save backend: fs or s3",
			Value: "fs",
		},
		&cli.StringFlag{
			Name:  "out-region",
			Usage: "AWS region for the s3 backend (optional, uses default chain)",
		},
		&cli.StringFlag{
			Name:  "out-endpoint",
			Usage: "Custom S3 endpoint URL (R2, MinIO, LocalStack)",
		},
		&cli.BoolFlag{
			Name:  "s3-path-style",
			Usage: "Force path-style S3 addressing",
		},
	}
}

func parseOutputConfig(c *cli.Context, cfg *config.Config) outputChoice {
	var oc config.OutputConfig
	if cfg != nil {
		oc = cfg.Output
	}
	return outputChoice{
		backend:   resolveString(c, "out-backend", oc.Backend),
		path:      resolveString(c, "out", oc.Path),
		region:    resolveString(c, "out-region", oc.Region),
		endpoint:  resolveString(c, "out-endpoint", oc.Endpoint),
		pathStyle: resolveBool(c, "s3-path-style", oc.S3PathStyle),
	}
}

// validateOutputConfig rejects combinations that cannot build a saver.
func validateOutputConfig(oc outputChoice) error {
	switch oc.backend {
	case "fs":
		if oc.endpoint != "" || oc.pathStyle {
			return fmt.Errorf("--out-endpoint and --s3-path-style require --out-backend s3")
		}
		return nil
	case "s3":
		if oc.path == "" || oc.path == "." {
			return fmt.Errorf("--out must name a bucket[/prefix] for the s3 backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown --out-backend %q (must be fs or s3)", oc.backend)
	}
}

// buildSaver creates the download target.
func buildSaver(ctx context.Context, oc outputChoice) (download.Saver, error) {
	if err := validateOutputConfig(oc); err != nil {
		return nil, err
	}
	if oc.backend == "fs" {
		s, err := download.NewFSSaver(oc.path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	bucket, prefix := download.ParseS3Path(oc.path)
	s, err := download.NewS3Saver(ctx, download.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       oc.region,
		Endpoint:     oc.endpoint,
		UsePathStyle: oc.pathStyle,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
