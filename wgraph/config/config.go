// Package config loads WikiGraph Explorer's runtime configuration from a
// file, environment variables, or built-in defaults, using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph"
	"github.com/spf13/viper"
)

// DecompressionBackend selects the C2 line-reader implementation.
type DecompressionBackend string

const (
	BackendSequential DecompressionBackend = "sequential"
	BackendParallel   DecompressionBackend = "parallel"
)

// HashmapImpl selects the identifier-resolution map implementation used
// by the C4/C5/C6 loaders.
type HashmapImpl string

const (
	HashmapStandard HashmapImpl = "standard"
	HashmapFast     HashmapImpl = "fast"
)

// DecompressionConfig configures the C2 line reader.
type DecompressionConfig struct {
	Backend         DecompressionBackend `mapstructure:"backend"`
	ParallelWorkers int                  `mapstructure:"parallel_workers"`
	ChunkSizeBytes  int                  `mapstructure:"chunk_size_bytes"`
}

// HashmapConfig configures the loader's identifier-resolution maps.
type HashmapConfig struct {
	Impl HashmapImpl `mapstructure:"impl"`
}

// Config stores all runtime configuration for WikiGraph Explorer. Values
// are read by viper from a config file, environment variables, or
// defaults.
type Config struct {
	Decompression  DecompressionConfig `mapstructure:"decompression"`
	Hashmap        HashmapConfig       `mapstructure:"hashmap"`
	DataDir        string              `mapstructure:"data_dir"`
	LogLevel       string              `mapstructure:"log_level"`
	RefreshRateMS  int                 `mapstructure:"refresh_rate_ms"`
}

var AppConfig Config

// LoadConfig reads configuration from configPath (if non-empty) or from
// the standard search locations, falling back to defaults when no config
// file is found.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(wgraph.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("decompression.backend", string(BackendSequential))
	v.SetDefault("decompression.parallel_workers", wgraph.DefaultParallelWorkers)
	v.SetDefault("decompression.chunk_size_bytes", wgraph.DefaultChunkSizeBytes)
	v.SetDefault("hashmap.impl", string(HashmapStandard))
	v.SetDefault("data_dir", wgraph.DefaultDataDir)
	v.SetDefault("log_level", "info")
	v.SetDefault("refresh_rate_ms", wgraph.DefaultRefreshRateMS)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	AppConfig = cfg
	return &cfg, nil
}
