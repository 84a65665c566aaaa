package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tferrors "github.com/tilefetch/tilefetch/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.BucketRoot != "gs://gcp-public-data-sentinel-2/L2/tiles" {
		t.Errorf("BucketRoot = %s", cfg.BucketRoot)
	}
	if cfg.OutputRoot != "Output_GCS" {
		t.Errorf("OutputRoot = %s", cfg.OutputRoot)
	}
	if cfg.Days != 15 {
		t.Errorf("Days = %d, want 15", cfg.Days)
	}
	if cfg.Threshold != 30.0 {
		t.Errorf("Threshold = %v, want 30", cfg.Threshold)
	}
	if !cfg.CloudGate {
		t.Error("cloud gate should be on by default")
	}
	if len(cfg.Regions) != 15 {
		t.Errorf("expected 15 default regions, got %d", len(cfg.Regions))
	}
	if cfg.Download.Marker != "" {
		t.Error("completion marker should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefault_RegionsAreCopies(t *testing.T) {
	cfg := Default()
	cfg.Regions[0][2] = "ZZ"
	if DefaultRegions[0][2] != "NQ" {
		t.Error("Default() must not share region slices")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero days", func(c *Config) { c.Days = 0 }, "days"},
		{"negative threshold", func(c *Config) { c.Threshold = -1 }, "threshold"},
		{"threshold above 100", func(c *Config) { c.Threshold = 100.5 }, "threshold"},
		{"empty bucket", func(c *Config) { c.BucketRoot = " " }, "bucket_root"},
		{"empty output", func(c *Config) { c.OutputRoot = "" }, "output_root"},
		{"no regions", func(c *Config) { c.Regions = nil }, "regions"},
		{"short region", func(c *Config) { c.Regions = [][]string{{"23", "K"}} }, "regions"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "ftp" }, "storage.backend"},
		{"gate without fields", func(c *Config) { c.Metadata.Fields = nil }, "metadata"},
		{"empty suffix", func(c *Config) { c.Suffix = "" }, "suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !tferrors.IsConfigError(err) {
				t.Errorf("expected config error, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name %q", err.Error(), tt.field)
			}
		})
	}
}

func TestValidate_GateOffNeedsNoFields(t *testing.T) {
	cfg := Default()
	cfg.CloudGate = false
	cfg.Metadata.Fields = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilefetch.yaml")
	content := `
output_root: /data/s2
days: 7
threshold: 12.5
cloud_gate: false
regions:
  - ["23", "K", "RT"]
storage:
  backend: s3
  endpoint: http://localhost:9000
  anonymous: true
download:
  marker: .complete
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OutputRoot != "/data/s2" || cfg.Days != 7 || cfg.Threshold != 12.5 || cfg.CloudGate {
		t.Errorf("scalar fields not loaded: %+v", cfg)
	}
	if len(cfg.Regions) != 1 || cfg.Regions[0][2] != "RT" {
		t.Errorf("Regions = %v", cfg.Regions)
	}
	if cfg.Storage.Backend != "s3" || !cfg.Storage.Anonymous || cfg.Storage.Endpoint != "http://localhost:9000" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Download.Marker != ".complete" {
		t.Errorf("Marker = %q", cfg.Download.Marker)
	}
	// untouched keys keep their defaults
	if cfg.BucketRoot != DefaultBucketRoot || cfg.Metadata.File != "MTD_MSIL2A.xml" {
		t.Errorf("defaults lost: bucket=%s file=%s", cfg.BucketRoot, cfg.Metadata.File)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilefetch.yaml")
	if err := os.WriteFile(path, []byte("days: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TILEFETCH_DAYS", "3")
	t.Setenv("TILEFETCH_STORAGE_TOOL", "/opt/google-cloud-sdk/bin/gcloud")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Days != 3 {
		t.Errorf("Days = %d, want env override 3", cfg.Days)
	}
	if cfg.Storage.Tool != "/opt/google-cloud-sdk/bin/gcloud" {
		t.Errorf("Tool = %s", cfg.Storage.Tool)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if !tferrors.IsConfigError(err) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tilefetch.yaml")

	cfg := Default()
	cfg.OutputRoot = "/tmp/tiles"
	cfg.Regions = [][]string{{"24", "K", "TV"}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.OutputRoot != "/tmp/tiles" {
		t.Errorf("OutputRoot = %s", loaded.OutputRoot)
	}
	if len(loaded.Regions) != 1 || loaded.Regions[0][0] != "24" {
		t.Errorf("Regions = %v", loaded.Regions)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("saved config should validate: %v", err)
	}
}

func TestCodes(t *testing.T) {
	codes, err := Default().Codes()
	if err != nil {
		t.Fatal(err)
	}
	if codes[9].String() != "23/K/RT" {
		t.Errorf("codes[9] = %s", codes[9])
	}
}
