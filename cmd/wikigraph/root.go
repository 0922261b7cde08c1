package main

import (
	"fmt"
	"os"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	log        zerolog.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wikigraph",
	Short: "Load a Wikipedia article-link dump and query shortest paths between pages",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		log = wgraph.NewLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: search ./config.yaml and ~/.config/wikigraph-explorer/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
