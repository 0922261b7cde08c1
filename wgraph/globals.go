// Package wgraph holds process-wide defaults shared by the loader,
// reader, and pagegraph subpackages.
package wgraph

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	DefaultAppName    = "wikigraph-explorer"
	DefaultConfigPath = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultDataDir    = filepath.Join(DefaultConfigPath, "dumps")

	// DefaultRefreshRateMS throttles progress-sink invocations from graph
	// construction and the BFS; loader progress is reported once per batch.
	DefaultRefreshRateMS = 200

	DefaultChunkSizeBytes  = 4 * 1024 * 1024
	DefaultParallelWorkers = 0 // 0 means runtime.NumCPU()
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// NewLogger returns a zerolog logger writing to stderr with a timestamp
// field, at the given level ("debug", "info", "warn", "error").
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
