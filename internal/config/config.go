// Package config loads ankipack settings from flags, environment and an
// optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
// ANKIPACK_PACKAGE__TIMEOUT maps to package.timeout.
const EnvPrefix = "ANKIPACK_"

type (
	// Config holds all application configuration.
	Config struct {
		LogLevel string  `koanf:"log_level" validate:"oneof=debug info warn error"`
		Server   Server  `koanf:"server"`
		Build    Build   `koanf:"build"`
		Package  Package `koanf:"package"`
	}

	Server struct {
		Addr string `koanf:"addr" validate:"required"`
	}

	Build struct {
		TempDir       string `koanf:"temp_dir"`
		InsertWorkers int    `koanf:"insert_workers" validate:"gte=1"`
	}

	Package struct {
		Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
		CompressionLevel int           `koanf:"compression_level" validate:"gte=-2,lte=9"`
	}
)

// RegisterFlags adds the configuration flags, with their defaults, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML configuration file")
	fs.String("log_level", "info", "Log level: debug, info, warn or error")
	fs.String("server.addr", ":8080", "Listen address for --serve")
	fs.String("build.temp_dir", "", "Parent directory for per-build scratch directories")
	fs.Int("build.insert_workers", 4, "Concurrent note/card inserts per build")
	fs.Duration("package.timeout", 30*time.Second, "Maximum time spent archiving one package")
	fs.Int("package.compression_level", 9, "Deflate level for archive entries")
}

// Load reads configuration with the precedence: changed flags, environment,
// config file, flag defaults.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}
