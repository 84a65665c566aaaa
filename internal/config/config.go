// Package config loads tilefetch settings from YAML, a .env file and
// TILEFETCH_* environment variables, in that order of precedence (lowest first).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tilefetch/tilefetch/internal/cloud"
	"github.com/tilefetch/tilefetch/internal/datewindow"
	tferrors "github.com/tilefetch/tilefetch/internal/errors"
	"github.com/tilefetch/tilefetch/internal/metadata"
	"github.com/tilefetch/tilefetch/internal/selection"
	"github.com/tilefetch/tilefetch/internal/tile"
)

const (
	// FileName is looked up in the working directory when no path is given.
	FileName = "tilefetch.yaml"
	// EnvPrefix prefixes environment overrides, e.g. TILEFETCH_DAYS=7.
	EnvPrefix = "TILEFETCH"

	DefaultBucketRoot = "gs://gcp-public-data-sentinel-2/L2/tiles"
	DefaultOutputRoot = "Output_GCS"
)

// DefaultRegions are the MGRS tiles covered out of the box.
var DefaultRegions = [][]string{
	{"23", "K", "NQ"}, {"23", "K", "NR"}, {"23", "K", "PR"}, {"23", "K", "QQ"},
	{"23", "K", "QR"}, {"23", "K", "QS"}, {"23", "K", "RQ"}, {"23", "K", "RR"},
	{"23", "K", "RS"}, {"23", "K", "RT"}, {"23", "K", "KP"},
	{"24", "K", "TA"}, {"24", "K", "TB"}, {"24", "K", "TC"}, {"24", "K", "TV"},
}

// DefaultBenignMarkers identify listing failures that just mean "nothing there".
var DefaultBenignMarkers = []string{"Bucket Brigade", "matched no objects"}

type Config struct {
	BucketRoot    string       `yaml:"bucket_root" mapstructure:"bucket_root"`
	OutputRoot    string       `yaml:"output_root" mapstructure:"output_root"`
	Regions       [][]string   `yaml:"regions" mapstructure:"regions"`
	Days          int          `yaml:"days" mapstructure:"days"`
	Threshold     float64      `yaml:"threshold" mapstructure:"threshold"`
	CloudGate     bool         `yaml:"cloud_gate" mapstructure:"cloud_gate"`
	Suffix        string       `yaml:"suffix" mapstructure:"suffix"`
	BenignMarkers []string     `yaml:"benign_markers" mapstructure:"benign_markers"`
	Metadata      MetadataConf `yaml:"metadata" mapstructure:"metadata"`
	Storage       cloud.Config `yaml:"storage" mapstructure:"storage"`
	Download      DownloadConf `yaml:"download" mapstructure:"download"`
	Log           LogConf      `yaml:"log" mapstructure:"log"`
}

type MetadataConf struct {
	File       string   `yaml:"file" mapstructure:"file"`
	Fields     []string `yaml:"fields" mapstructure:"fields"`
	ScratchDir string   `yaml:"scratch_dir,omitempty" mapstructure:"scratch_dir"` // OS temp dir when empty
}

type DownloadConf struct {
	Marker string `yaml:"marker" mapstructure:"marker"` // completion marker file name, disabled when empty
	DryRun bool   `yaml:"dry_run" mapstructure:"dry_run"`
}

type LogConf struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file" mapstructure:"file"` // rotating log file, disabled when empty
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// Default returns the built-in configuration.
func Default() *Config {
	regions := make([][]string, len(DefaultRegions))
	for i, r := range DefaultRegions {
		regions[i] = append([]string(nil), r...)
	}
	return &Config{
		BucketRoot:    DefaultBucketRoot,
		OutputRoot:    DefaultOutputRoot,
		Regions:       regions,
		Days:          datewindow.DefaultDays,
		Threshold:     selection.DefaultThreshold,
		CloudGate:     true,
		Suffix:        tile.DefaultSuffix,
		BenignMarkers: append([]string(nil), DefaultBenignMarkers...),
		Metadata: MetadataConf{
			File:   metadata.DefaultFileName,
			Fields: append([]string(nil), metadata.DefaultFields...),
		},
		Storage: cloud.Config{
			Backend: cloud.BackendGCloud,
			Tool:    cloud.DefaultTool,
		},
		Log: LogConf{
			Level:      "info",
			Format:     "console",
			File:       filepath.Join("logs", "tilefetch.log"),
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

// Path resolves the config file to use. An explicit path wins; otherwise
// tilefetch.yaml in the working directory, if present. It returns "" when
// there is no file to read.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	return ""
}

// Load reads the configuration. Missing files fall back to Default; an
// explicitly named file must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if file := Path(path); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, tferrors.NewConfigError(file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, tferrors.NewConfigError("unmarshal", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides are seen by Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("bucket_root", cfg.BucketRoot)
	v.SetDefault("output_root", cfg.OutputRoot)
	v.SetDefault("regions", cfg.Regions)
	v.SetDefault("days", cfg.Days)
	v.SetDefault("threshold", cfg.Threshold)
	v.SetDefault("cloud_gate", cfg.CloudGate)
	v.SetDefault("suffix", cfg.Suffix)
	v.SetDefault("benign_markers", cfg.BenignMarkers)

	v.SetDefault("metadata.file", cfg.Metadata.File)
	v.SetDefault("metadata.fields", cfg.Metadata.Fields)
	v.SetDefault("metadata.scratch_dir", cfg.Metadata.ScratchDir)

	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.tool", cfg.Storage.Tool)
	v.SetDefault("storage.extra_args", cfg.Storage.ExtraArgs)
	v.SetDefault("storage.region", cfg.Storage.Region)
	v.SetDefault("storage.endpoint", cfg.Storage.Endpoint)
	v.SetDefault("storage.anonymous", cfg.Storage.Anonymous)

	v.SetDefault("download.marker", cfg.Download.Marker)
	v.SetDefault("download.dry_run", cfg.Download.DryRun)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
}

// Validate checks the settings the pipeline depends on.
func (c *Config) Validate() error {
	if c.Days <= 0 {
		return tferrors.NewConfigError("days", fmt.Errorf("must be positive, got %d", c.Days))
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return tferrors.NewConfigError("threshold", fmt.Errorf("must be between 0 and 100, got %g", c.Threshold))
	}
	if strings.TrimSpace(c.BucketRoot) == "" {
		return tferrors.NewConfigError("bucket_root", fmt.Errorf("must not be empty"))
	}
	if strings.TrimSpace(c.OutputRoot) == "" {
		return tferrors.NewConfigError("output_root", fmt.Errorf("must not be empty"))
	}
	if c.Suffix == "" {
		return tferrors.NewConfigError("suffix", fmt.Errorf("must not be empty"))
	}
	if len(c.Regions) == 0 {
		return tferrors.NewConfigError("regions", fmt.Errorf("at least one region is required"))
	}
	if _, err := tile.ParseCodes(c.Regions); err != nil {
		return tferrors.NewConfigError("regions", err)
	}
	if c.CloudGate && (c.Metadata.File == "" || len(c.Metadata.Fields) == 0) {
		return tferrors.NewConfigError("metadata", fmt.Errorf("file and fields are required while cloud_gate is on"))
	}
	switch c.Storage.Backend {
	case cloud.BackendGCloud, cloud.BackendS3:
	default:
		return tferrors.NewConfigError("storage.backend", fmt.Errorf("unsupported backend %q", c.Storage.Backend))
	}
	return nil
}

// Codes returns the configured regions as tile codes.
func (c *Config) Codes() ([]tile.Code, error) {
	return tile.ParseCodes(c.Regions)
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
