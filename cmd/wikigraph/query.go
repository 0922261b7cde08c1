package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/config"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/loader"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/pagegraph"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/reader"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/wikifile"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/workerpool"
	"github.com/spf13/cobra"
)

var (
	fromTitle  string
	toTitle    string
	suggestN   int
)

var queryCmd = &cobra.Command{
	Use:   "query [page.sql.gz] [linktarget.sql.gz] [pagelinks.sql.gz]",
	Short: "Load the three MediaWiki dump tables and print all shortest paths between --from and --to",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if fromTitle == "" || toTitle == "" {
			return errors.New("wikigraph: --from and --to are required")
		}

		pageFile, err := wikifile.NewFromPath(args[0], "")
		if err != nil {
			return fmt.Errorf("page dump: %w", err)
		}
		linkTargetFile, err := wikifile.NewFromPath(args[1], "")
		if err != nil {
			return fmt.Errorf("linktarget dump: %w", err)
		}
		pageLinksFile, err := wikifile.NewFromPath(args[2], "")
		if err != nil {
			return fmt.Errorf("pagelinks dump: %w", err)
		}

		openReader := func(file wikifile.WikiFile) (reader.LineReader, error) {
			if cfg.Decompression.Backend == config.BackendParallel {
				return reader.NewParallelReader(file, cfg.Decompression.ChunkSizeBytes, log)
			}
			return reader.NewSequentialReader(file, log)
		}

		var pool *workerpool.Pool
		if cfg.Decompression.Backend == config.BackendParallel {
			pool = workerpool.New(cfg.Decompression.ParallelWorkers, log)
			defer pool.Close()
		}

		mgr := loader.NewManager(loader.HashmapImpl(cfg.Hashmap.Impl), log)
		stats, err := mgr.Run(pageFile, linkTargetFile, pageLinksFile, openReader, nil, pool, 8)
		if err != nil {
			return err
		}
		fmt.Printf("loaded %d pages, %d edges in %v\n", stats.Pages, stats.Edges, stats.TotalDuration())

		refresh := time.Duration(cfg.RefreshRateMS) * time.Millisecond
		graph := pagegraph.BuildGraph(mgr.Pages(), mgr.Edges(), refresh, nil)

		fromIndex, ok := mgr.PageLoader().FindPageIndexByTitle(fromTitle)
		if !ok {
			return reportMissingTitle(mgr.PageLoader(), "from", fromTitle)
		}
		toIndex, ok := mgr.PageLoader().FindPageIndexByTitle(toTitle)
		if !ok {
			return reportMissingTitle(mgr.PageLoader(), "to", toTitle)
		}

		paths, err := graph.AllShortestPaths(fromIndex, toIndex, refresh, nil)
		if err != nil {
			fmt.Println(err)
			return nil
		}
		if len(paths) == 0 {
			fmt.Printf("no path from %q to %q\n", fromTitle, toTitle)
			return nil
		}

		fmt.Printf("%d shortest path(s) of length %d:\n", len(paths), len(paths[0])-1)
		for _, path := range paths {
			titles := make([]string, len(path))
			for i, idx := range path {
				titles[i] = graph.Page(idx).Title
			}
			fmt.Println(strings.Join(titles, " -> "))
		}
		return nil
	},
}

func reportMissingTitle(pages *loader.PageLoader, side, title string) error {
	suggestions := pages.SuggestTitles(title, suggestN)
	if len(suggestions) == 0 {
		return fmt.Errorf("wikigraph: no page titled %q (--%s)", title, side)
	}
	titles := make([]string, 0, len(suggestions))
	for _, idx := range suggestions {
		titles = append(titles, pages.Pages()[idx].Title)
	}
	return fmt.Errorf("wikigraph: no page titled %q (--%s); did you mean: %s", title, side, strings.Join(titles, ", "))
}

func init() {
	queryCmd.Flags().StringVar(&fromTitle, "from", "", "starting article title")
	queryCmd.Flags().StringVar(&toTitle, "to", "", "destination article title")
	queryCmd.Flags().IntVar(&suggestN, "suggest", 5, "number of prefix-match suggestions to show on a missing title")
	rootCmd.AddCommand(queryCmd)
}
