package cloud

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	tferrors "github.com/tilefetch/tilefetch/internal/errors"
	"github.com/tilefetch/tilefetch/internal/security"
)

// S3Provider implements Provider for S3-compatible storage using s3:// URIs.
type S3Provider struct {
	client   *s3.Client
	endpoint string
}

// NewS3Provider creates a new S3 provider
func NewS3Provider(ctx context.Context, cfg Config) (*S3Provider, error) {
	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Anonymous {
		opts = append(opts, config.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for most S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Provider{client: client, endpoint: cfg.Endpoint}, nil
}

// Name returns the provider name
func (p *S3Provider) Name() string {
	if p.endpoint != "" {
		return "S3-compatible"
	}
	return "AWS S3"
}

// List returns the common prefixes and objects directly under uri.
func (p *S3Provider) List(ctx context.Context, uri string) ([]string, error) {
	bucket, prefix, err := parseS3URI(uri)
	if err != nil {
		return nil, tferrors.NewListError(uri, err)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var entries []string
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, tferrors.NewListError(uri, err)
		}
		for _, cp := range page.CommonPrefixes {
			entries = append(entries, s3URI(bucket, aws.ToString(cp.Prefix)))
		}
		for _, obj := range page.Contents {
			entries = append(entries, s3URI(bucket, aws.ToString(obj.Key)))
		}
	}

	if len(entries) == 0 {
		return nil, tferrors.NewListError(uri, fmt.Errorf("matched no objects"))
	}
	return entries, nil
}

// Fetch downloads a single object to localPath.
func (p *S3Provider) Fetch(ctx context.Context, uri, localPath string) error {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return tferrors.NewFetchError(uri, err)
	}
	if err := p.download(ctx, bucket, key, localPath); err != nil {
		return tferrors.NewFetchError(uri, err)
	}
	return nil
}

// CopyRecursive downloads every object under uri into localDir/<folder>/.
func (p *S3Provider) CopyRecursive(ctx context.Context, uri, localDir string) error {
	bucket, prefix, err := parseS3URI(uri)
	if err != nil {
		return tferrors.NewCopyError(uri, err)
	}
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	root := path.Base(strings.TrimSuffix(prefix, "/"))

	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	copied := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return tferrors.NewCopyError(uri, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Skip directory placeholders
			if strings.HasSuffix(key, "/") {
				continue
			}
			dst, err := localPathForKey(localDir, root, prefix, key)
			if err != nil {
				return tferrors.NewCopyError(uri, err)
			}
			if err := p.download(ctx, bucket, key, dst); err != nil {
				return tferrors.NewCopyError(uri, err).WithTarget(key)
			}
			copied++
		}
	}

	if copied == 0 {
		return tferrors.NewCopyError(uri, fmt.Errorf("matched no objects"))
	}
	return nil
}

func (p *S3Provider) download(ctx context.Context, bucket, key, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	downloader := manager.NewDownloader(p.client)
	_, err = downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		os.Remove(localPath) // Clean up partial file
		return fmt.Errorf("failed to download from S3: %w", err)
	}
	return nil
}

// localPathForKey maps an object key under prefix to
// localDir/<root>/<key relative to prefix>.
func localPathForKey(localDir, root, prefix, key string) (string, error) {
	rel := strings.TrimPrefix(key, prefix)
	return security.SafeJoin(filepath.Join(localDir, root), rel)
}

// parseS3URI splits s3://bucket/key into bucket and key.
func parseS3URI(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("not an s3:// URI: %s", uri)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func s3URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
