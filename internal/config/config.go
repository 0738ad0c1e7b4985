// Package config loads donagg job settings from YAML or TOML files and
// merges them with command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/campaign-data/donagg/internal/donations"
	"github.com/campaign-data/donagg/internal/entity"
	"github.com/campaign-data/donagg/internal/mapreduce"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Flag names shared by the commands and ApplyFlags.
const (
	FlagEntities   = "entities"
	FlagOutput     = "output"
	FlagFormat     = "format"
	FlagHeader     = "header"
	FlagWorkers    = "workers"
	FlagChunkSize  = "chunk-size"
	FlagPartitions = "partitions"
	FlagNoCombine  = "no-combine"
	FlagThreshold  = "threshold"
	FlagLogLevel   = "log-level"
	FlagRunLog     = "run-log"
)

// Config is the top-level donagg configuration.
type Config struct {
	Entities string           `yaml:"entities" toml:"entities"`
	Columns  donations.Layout `yaml:"columns" toml:"columns"`
	Job      JobConfig        `yaml:"job" toml:"job"`
	Matching MatchingConfig   `yaml:"matching" toml:"matching"`
	Output   OutputConfig     `yaml:"output" toml:"output"`
	Log      LogConfig        `yaml:"log" toml:"log"`
}

// JobConfig sizes the map/reduce run.
type JobConfig struct {
	Workers    int  `yaml:"workers" toml:"workers"` // 0 means one per CPU
	ChunkSize  int  `yaml:"chunk_size" toml:"chunk_size"`
	Partitions int  `yaml:"partitions" toml:"partitions"`
	Combine    bool `yaml:"combine" toml:"combine"`
}

// MatchingConfig controls the donor/organization gate.
type MatchingConfig struct {
	Threshold int `yaml:"threshold" toml:"threshold"`
}

// OutputConfig selects where totals go.
type OutputConfig struct {
	Format string `yaml:"format" toml:"format"`
	Path   string `yaml:"path" toml:"path"` // "-" or empty is stdout for csv
	Header bool   `yaml:"header" toml:"header"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	RunLog string `yaml:"run_log" toml:"run_log"` // empty disables the run log
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Columns: donations.DefaultLayout(),
		Job: JobConfig{
			ChunkSize:  mapreduce.DefaultChunkSize,
			Partitions: mapreduce.DefaultPartitions,
			Combine:    true,
		},
		Matching: MatchingConfig{Threshold: entity.DefaultThreshold},
		Output:   OutputConfig{Format: "csv", Path: "-"},
		Log:      LogConfig{Level: "info"},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a config file on top of the defaults, so keys missing from
// the file keep their default values. Files ending in .toml are TOML;
// everything else is YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML or YAML depending on the file extension.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks ranges. Errors wrap ErrInvalid.
func (c *Config) Validate() error {
	if err := c.Columns.Validate(); err != nil {
		return fmt.Errorf("%w: columns: %v", ErrInvalid, err)
	}
	if c.Job.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}
	if c.Job.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalid)
	}
	if c.Job.Partitions <= 0 {
		return fmt.Errorf("%w: partitions must be positive", ErrInvalid)
	}
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 100 {
		return fmt.Errorf("%w: threshold %d outside 0..100", ErrInvalid, c.Matching.Threshold)
	}
	if c.Output.Format == "" {
		return fmt.Errorf("%w: output format is required", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// ApplyFlags copies every flag explicitly set on fs into c, so flags win
// over file values and defaults. Flags not defined on fs are ignored.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	s := &flagSetter{fs: fs, changed: changed}
	s.setString(FlagEntities, &c.Entities)
	s.setString(FlagOutput, &c.Output.Path)
	s.setString(FlagFormat, &c.Output.Format)
	s.setBool(FlagHeader, &c.Output.Header)
	s.setInt(FlagWorkers, &c.Job.Workers)
	s.setInt(FlagChunkSize, &c.Job.ChunkSize)
	s.setInt(FlagPartitions, &c.Job.Partitions)
	s.setInt(FlagThreshold, &c.Matching.Threshold)
	s.setString(FlagLogLevel, &c.Log.Level)
	s.setString(FlagRunLog, &c.Log.RunLog)

	var noCombine bool
	s.setBool(FlagNoCombine, &noCombine)
	if changed[FlagNoCombine] {
		c.Job.Combine = !noCombine
	}
	return s.err
}

// flagSetter reads changed flags into config fields, keeping the first
// error.
type flagSetter struct {
	fs      *pflag.FlagSet
	changed map[string]bool
	err     error
}

func (s *flagSetter) setString(flag string, dst *string) {
	if s.err != nil || !s.changed[flag] {
		return
	}
	v, err := s.fs.GetString(flag)
	if err != nil {
		s.err = fmt.Errorf("flag %s: %w", flag, err)
		return
	}
	*dst = v
}

func (s *flagSetter) setInt(flag string, dst *int) {
	if s.err != nil || !s.changed[flag] {
		return
	}
	v, err := s.fs.GetInt(flag)
	if err != nil {
		s.err = fmt.Errorf("flag %s: %w", flag, err)
		return
	}
	*dst = v
}

func (s *flagSetter) setBool(flag string, dst *bool) {
	if s.err != nil || !s.changed[flag] {
		return
	}
	v, err := s.fs.GetBool(flag)
	if err != nil {
		s.err = fmt.Errorf("flag %s: %w", flag, err)
		return
	}
	*dst = v
}
