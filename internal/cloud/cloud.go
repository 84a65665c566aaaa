// Package cloud provides the remote storage client used to browse and
// download tile products. Two backends implement Provider: the gcloud CLI
// invoked as a subprocess, and a native S3 client for S3 mirrors of the
// archive (AWS S3, MinIO, Cloudflare R2 and other compatible services).
package cloud

import (
	"context"
	"fmt"
)

// Provider defines the three storage operations the pipeline needs
type Provider interface {
	// List returns the entries directly under uri, one level deep, in the
	// order the backend produced them.
	List(ctx context.Context, uri string) ([]string, error)

	// Fetch copies a single remote object to localPath.
	Fetch(ctx context.Context, uri, localPath string) error

	// CopyRecursive copies the remote folder uri into localDir, creating
	// localDir/<folder name>/...
	CopyRecursive(ctx context.Context, uri, localDir string) error

	// Name returns the provider name
	Name() string
}

// Checker is implemented by providers that depend on something outside
// the process, such as an executable on PATH.
type Checker interface {
	Available() error
}

const (
	BackendGCloud = "gcloud"
	BackendS3     = "s3"
)

// Config holds remote storage configuration
type Config struct {
	Backend   string   `yaml:"backend" mapstructure:"backend"`       // "gcloud" or "s3"
	Tool      string   `yaml:"tool" mapstructure:"tool"`             // gcloud executable
	ExtraArgs []string `yaml:"extra_args" mapstructure:"extra_args"` // appended after the subcommand
	Region    string   `yaml:"region,omitempty" mapstructure:"region"`
	Endpoint  string   `yaml:"endpoint,omitempty" mapstructure:"endpoint"` // custom endpoint for S3-compatible services
	Anonymous bool     `yaml:"anonymous" mapstructure:"anonymous"`         // unsigned requests for public buckets
}

// NewProvider creates a remote storage provider based on configuration
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Backend {
	case BackendGCloud, "":
		return NewCLIProvider(cfg.Tool, cfg.ExtraArgs...), nil
	case BackendS3:
		return NewS3Provider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// CheckAvailable verifies the provider can run, when it can tell.
func CheckAvailable(p Provider) error {
	if c, ok := p.(Checker); ok {
		return c.Available()
	}
	return nil
}
