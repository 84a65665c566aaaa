package cloud

import (
	"context"
	"path/filepath"
	"testing"
)

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://sentinel/tiles/23/K/RT/", "sentinel", "tiles/23/K/RT/", false},
		{"s3://sentinel", "sentinel", "", false},
		{"gs://sentinel/tiles/", "", "", true},
		{"s3:///no-bucket", "", "", true},
	}

	for _, tt := range tests {
		bucket, key, err := parseS3URI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseS3URI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("parseS3URI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, key, tt.bucket, tt.key)
		}
	}
}

func TestLocalPathForKey(t *testing.T) {
	prefix := "tiles/23/K/RT/A.SAFE/"
	got, err := localPathForKey("out", "A.SAFE", prefix, prefix+"GRANULE/L2A/MTD_TL.xml")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("out", "A.SAFE", "GRANULE", "L2A", "MTD_TL.xml")
	if got != want {
		t.Errorf("localPathForKey() = %s, want %s", got, want)
	}

	if _, err := localPathForKey("out", "A.SAFE", prefix, prefix+"../../evil"); err == nil {
		t.Error("expected traversal to be rejected")
	}
}

func TestS3URI(t *testing.T) {
	if got := s3URI("b", "x/y/"); got != "s3://b/x/y/" {
		t.Errorf("s3URI() = %s", got)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, Config{Backend: ""})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if _, ok := p.(*CLIProvider); !ok {
		t.Errorf("empty backend should default to gcloud, got %T", p)
	}

	if _, err := NewProvider(ctx, Config{Backend: "ftp"}); err == nil {
		t.Error("Expected error for unsupported backend, got nil")
	}
}

func TestNewProvider_S3Compatible(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{
		Backend:   BackendS3,
		Region:    "us-east-1",
		Endpoint:  "https://s3.example.com",
		Anonymous: true,
	})
	if err != nil {
		t.Skipf("Skipping S3-compatible provider test: %v", err)
	}
	if p.Name() != "S3-compatible" {
		t.Errorf("Expected provider name 'S3-compatible', got %q", p.Name())
	}
	if err := CheckAvailable(p); err != nil {
		t.Errorf("S3 provider has no external dependency, got %v", err)
	}
}
