package main

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// Config holds the conversion settings. Keys of the YAML file mirror the
// command-line flags.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	Workers    int    `yaml:"workers"`
	Quality    int    `yaml:"quality"`
	Suffix     string `yaml:"suffix"`
	Overwrite  bool   `yaml:"overwrite"`
	OutputDir  string `yaml:"output_dir"`
	Background string `yaml:"background"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Workers:    runtime.NumCPU(),
		Quality:    95,
		Suffix:     "_c",
		Background: "ffffff",
	}
}

// loadConfig reads the YAML file at path over the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// registerFlags declares the flags that override Config fields.
func registerFlags(fs *pflag.FlagSet) {
	def := defaultConfig()
	fs.String("config", "", "YAML configuration file")
	fs.String("log-level", def.LogLevel, "log level (trace, debug, info, warn, error, fatal, panic)")
	fs.IntP("workers", "j", def.Workers, "number of files converted in parallel")
	fs.IntP("quality", "q", def.Quality, "JPEG quality 1-100")
	fs.String("suffix", def.Suffix, "appended to the file name of every output")
	fs.Bool("overwrite", false, "replace existing outputs")
	fs.StringP("output-dir", "o", "", "directory for outputs (default: next to each input)")
	fs.String("background", def.Background, "hex RGB color transparent pixels are blended onto")
}

// resolveConfig builds the effective configuration: explicitly set flags
// win over the config file, which wins over the defaults.
func resolveConfig(fs *pflag.FlagSet) (Config, error) {
	cfg := defaultConfig()
	if path, _ := fs.GetString("config"); path != "" {
		var err error
		if cfg, err = loadConfig(path); err != nil {
			return cfg, err
		}
	}

	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "log-level":
			cfg.LogLevel, err = fs.GetString(f.Name)
		case "workers":
			cfg.Workers, err = fs.GetInt(f.Name)
		case "quality":
			cfg.Quality, err = fs.GetInt(f.Name)
		case "suffix":
			cfg.Suffix, err = fs.GetString(f.Name)
		case "overwrite":
			cfg.Overwrite, err = fs.GetBool(f.Name)
		case "output-dir":
			cfg.OutputDir, err = fs.GetString(f.Name)
		case "background":
			cfg.Background, err = fs.GetString(f.Name)
		}
	})
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be in [1, 100], got %d", c.Quality)
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix %q contains a path separator", c.Suffix)
	}
	if _, err := parseBackground(c.Background); err != nil {
		return err
	}
	return nil
}

// parseBackground parses a color written as RRGGBB, with an optional
// leading '#'.
func parseBackground(s string) (color.RGBA, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(b) != 3 {
		return color.RGBA{}, fmt.Errorf("invalid background color %q, want RRGGBB", s)
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xff}, nil
}
