// Package config loads crlfstat settings from a config file, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/idelchi/crlfstat/internal/crlfstat"
)

// Sentinel validation errors.
var (
	ErrInvalidOutput     = errors.New("invalid output format")
	ErrNegativeDepth     = errors.New("depth cannot be negative")
	ErrNegativeJobs      = errors.New("jobs cannot be negative")
	ErrInvalidBufferSize = errors.New("invalid buffer size")
)

const (
	// configName is the config file name without extension.
	configName = ".crlfstat"
	// configType is the config file format.
	configType = "yaml"
	// envPrefix is the environment variable prefix.
	envPrefix = "CRLFSTAT"
)

// Outputs lists the supported report formats.
//
//nolint:gochecknoglobals // Config constant
var Outputs = []string{"text", "table", "json"}

// DefaultExcludes contains the default exclusion patterns.
//
//nolint:gochecknoglobals // Config constant
var DefaultExcludes = []string{`.*\.git/.*`, `.*node_modules/.*`}

// Config holds every setting of a run.
type Config struct {
	Extensions []string `mapstructure:"ext"`
	Excludes   []string `mapstructure:"exclude"`
	BufferSize string   `mapstructure:"buffer_size"`
	Output     string   `mapstructure:"output"`
	Depth      int      `mapstructure:"depth"`
	Jobs       int      `mapstructure:"jobs"`
	Follow     bool     `mapstructure:"follow"`
	NoIgnore   bool     `mapstructure:"no_ignore"`
	SkipVendor bool     `mapstructure:"skip_vendor"`
	Verbose    bool     `mapstructure:"verbose"`
	Debug      bool     `mapstructure:"debug"`
	Strict     bool     `mapstructure:"strict"`
}

// flagKeys maps viper keys to flag names.
//
//nolint:gochecknoglobals // Lookup table
var flagKeys = map[string]string{
	"ext":         "ext",
	"exclude":     "exclude",
	"buffer_size": "buffer-size",
	"output":      "output",
	"depth":       "depth",
	"jobs":        "jobs",
	"follow":      "follow",
	"no_ignore":   "no-ignore",
	"skip_vendor": "skip-vendor",
	"verbose":     "verbose",
	"debug":       "debug",
	"strict":      "strict",
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("ext", []string{})
	v.SetDefault("exclude", DefaultExcludes)
	v.SetDefault("buffer_size", humanize.IBytes(crlfstat.DefaultBufferSize))
	v.SetDefault("output", "text")
	v.SetDefault("depth", 0)
	v.SetDefault("jobs", 0)
	v.SetDefault("follow", false)
	v.SetDefault("no_ignore", false)
	v.SetDefault("skip_vendor", false)
	v.SetDefault("verbose", false)
	v.SetDefault("debug", false)
	v.SetDefault("strict", false)
}

// Load resolves the configuration. Precedence, highest first: flags that were
// set, CRLFSTAT_* environment variables, the config file, flag defaults.
// If configPath is empty, .crlfstat.yaml is searched in the working directory
// and $HOME; a missing file is not an error.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}

			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %q: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if !slices.Contains(Outputs, strings.ToLower(c.Output)) {
		return fmt.Errorf("%w %q: must be one of %v", ErrInvalidOutput, c.Output, Outputs)
	}

	if c.Depth < 0 {
		return ErrNegativeDepth
	}

	if c.Jobs < 0 {
		return ErrNegativeJobs
	}

	if _, err := c.BufferBytes(); err != nil {
		return err
	}

	return nil
}

// BufferBytes parses BufferSize (e.g. "32KiB", "4096") into a byte count.
func (c *Config) BufferBytes() (int, error) {
	if c.BufferSize == "" {
		return crlfstat.DefaultBufferSize, nil
	}

	size, err := humanize.ParseBytes(c.BufferSize)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidBufferSize, c.BufferSize, err)
	}

	if size == 0 {
		return 0, fmt.Errorf("%w %q: must be at least one byte", ErrInvalidBufferSize, c.BufferSize)
	}

	n, err := safecast.Conv[int](size)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidBufferSize, c.BufferSize, err)
	}

	return n, nil
}

// Options converts the configuration into walk options rooted at path.
func (c *Config) Options(path string) (crlfstat.Options, error) {
	bufSize, err := c.BufferBytes()
	if err != nil {
		return crlfstat.Options{}, err
	}

	return crlfstat.Options{
		Path:       path,
		Extensions: c.Extensions,
		Excludes:   c.Excludes,
		Depth:      c.Depth,
		Jobs:       c.Jobs,
		BufferSize: bufSize,
		Follow:     c.Follow,
		NoIgnore:   c.NoIgnore,
		SkipVendor: c.SkipVendor,
	}, nil
}
