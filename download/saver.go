package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"

	"github.com/pithecene-io/webpify/types"
)

// Saver writes a downloaded file and returns where it was written.
type Saver interface {
	Save(ctx context.Context, name string, r io.Reader) (location string, err error)
}

// StoreSaver saves files into a lode store under an optional key prefix.
// An existing file with the same name is overwritten.
type StoreSaver struct {
	store  lode.Store
	prefix string
	locate func(key string) string
}

// NewStoreSaver saves into store. Locations are the store keys.
func NewStoreSaver(store lode.Store, prefix string) *StoreSaver {
	return &StoreSaver{store: store, prefix: prefix, locate: func(key string) string { return key }}
}

// NewFSSaver saves into dir, creating it if needed.
func NewFSSaver(dir string) (*StoreSaver, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	store, err := lode.NewFSFactory(dir)()
	if err != nil {
		return nil, fmt.Errorf("open output directory: %w", err)
	}
	return &StoreSaver{
		store:  store,
		locate: func(key string) string { return filepath.Join(dir, filepath.FromSlash(key)) },
	}, nil
}

// S3Config holds configuration for the S3 save target.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom endpoint for S3-compatible providers.
	Endpoint string
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path parses a path in format "bucket/prefix" or "bucket".
func ParseS3Path(p string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(strings.TrimPrefix(p, "s3://"), "/")
	return bucket, strings.Trim(prefix, "/")
}

// NewS3Saver saves into an S3 bucket using the AWS default credential chain.
func NewS3Saver(ctx context.Context, cfg S3Config) (*StoreSaver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	client := s3.NewFromConfig(awsConfig, s3Opts...)

	store, err := lodes3.New(client, lodes3.Config{Bucket: cfg.Bucket, Prefix: cfg.Prefix})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}

	base := "s3://" + cfg.Bucket
	if cfg.Prefix != "" {
		base += "/" + strings.Trim(cfg.Prefix, "/")
	}
	return &StoreSaver{
		store:  store,
		locate: func(key string) string { return base + "/" + key },
	}, nil
}

// Save implements Saver.
func (s *StoreSaver) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key := SafeName(name)
	if s.prefix != "" {
		key = path.Join(s.prefix, key)
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", key, err)
	}
	if exists {
		if err := s.store.Delete(ctx, key); err != nil {
			return "", fmt.Errorf("replace %s: %w", key, err)
		}
	}
	if err := s.store.Put(ctx, key, r); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return s.locate(key), nil
}

// SafeName reduces a service-supplied filename to a single path element.
func SafeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch base {
	case ".", "..", "/", "":
		return types.DefaultResultName
	}
	return base
}
