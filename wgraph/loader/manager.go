package loader

import (
	"fmt"
	"time"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/reader"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/wikifile"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/workerpool"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunStats records per-stage timing and record counts for one load run,
// keyed by a correlation id so concurrent runs (e.g. a long-running
// server reloading a newer dump while serving queries against the old
// one) can be told apart in logs.
type RunStats struct {
	RunID uuid.UUID

	PageDuration       time.Duration
	LinkTargetDuration time.Duration
	LinkDuration       time.Duration

	Pages          int
	Redirects      uint64
	LinkTargetsOK  uint64
	LinkTargetMiss uint64
	Edges          int
	LinkFromMiss   uint64
	LinkTargetGone uint64
}

// TotalDuration sums the three stage durations.
func (s RunStats) TotalDuration() time.Duration {
	return s.PageDuration + s.LinkTargetDuration + s.LinkDuration
}

// Manager implements C7: it sequences the page, linktarget, and pagelinks
// loaders and releases each stage's scratch lookup maps as soon as the
// next stage no longer needs them, per the memory-release ordering
// design note — PageIdLookup and LinkTargetLookup are freed once the
// pagelinks pass completes, while TitleLookup on PageLoader stays alive
// for interactive title queries.
type Manager struct {
	pages   *PageLoader
	targets *LinkTargetLoader
	links   *LinkLoader

	hashmapImpl HashmapImpl
	log         zerolog.Logger
}

// NewManager constructs a Manager. hashmapImpl selects the identifier
// map implementation for every loader stage.
func NewManager(hashmapImpl HashmapImpl, log zerolog.Logger) *Manager {
	return &Manager{hashmapImpl: hashmapImpl, log: log}
}

// ReaderFactory opens a LineReader for the given file, letting the
// manager stay agnostic of whether the sequential or parallel C2 backend
// is in use.
type ReaderFactory func(file wikifile.WikiFile) (reader.LineReader, error)

// Run drives all three loader stages in order over pageFile, linkTargetFile,
// and pageLinksFile, using openReader to construct a fresh LineReader for
// each. progress is invoked with per-stage record counts as each stage
// runs, and pool (may be nil) fans tuple parsing across workers.
func (m *Manager) Run(pageFile, linkTargetFile, pageLinksFile wikifile.WikiFile, openReader ReaderFactory, progress ProgressFunc, pool *workerpool.Pool, maxOutstanding int) (RunStats, error) {
	stats := RunStats{RunID: uuid.New()}
	log := m.log.With().Str("run_id", stats.RunID.String()).Logger()

	m.pages = NewPageLoader(m.hashmapImpl, log)
	start := time.Now()
	pageReader, err := openReader(pageFile)
	if err != nil {
		return stats, fmt.Errorf("loader: manager: open page reader: %w", err)
	}
	err = m.pages.LoadPageTable(pageFile, pageReader, progress, pool, maxOutstanding)
	closeErr := pageReader.Close()
	if err != nil {
		return stats, fmt.Errorf("loader: manager: page stage: %w", err)
	}
	if closeErr != nil {
		log.Warn().Err(closeErr).Msg("page reader close returned an error")
	}
	stats.PageDuration = time.Since(start)
	stats.Pages = m.pages.PageCount()
	stats.Redirects = m.pages.RedirectCount()

	m.targets = NewLinkTargetLoader(m.hashmapImpl, log)
	start = time.Now()
	ltReader, err := openReader(linkTargetFile)
	if err != nil {
		return stats, fmt.Errorf("loader: manager: open linktarget reader: %w", err)
	}
	err = m.targets.LoadLinkTargetTable(linkTargetFile, ltReader, m.pages, progress, pool, maxOutstanding)
	closeErr = ltReader.Close()
	if err != nil {
		return stats, fmt.Errorf("loader: manager: linktarget stage: %w", err)
	}
	if closeErr != nil {
		log.Warn().Err(closeErr).Msg("linktarget reader close returned an error")
	}
	stats.LinkTargetDuration = time.Since(start)
	stats.LinkTargetsOK = m.targets.Mapped()
	stats.LinkTargetMiss = m.targets.TitleMiss()

	m.links = NewLinkLoader(log)
	start = time.Now()
	linkReader, err := openReader(pageLinksFile)
	if err != nil {
		return stats, fmt.Errorf("loader: manager: open pagelinks reader: %w", err)
	}
	err = m.links.LoadPageLinksTable(pageLinksFile, linkReader, m.pages, m.targets, progress, pool, maxOutstanding)
	closeErr = linkReader.Close()
	if err != nil {
		return stats, fmt.Errorf("loader: manager: pagelinks stage: %w", err)
	}
	if closeErr != nil {
		log.Warn().Err(closeErr).Msg("pagelinks reader close returned an error")
	}
	stats.LinkDuration = time.Since(start)
	stats.Edges = len(m.links.Edges())
	stats.LinkFromMiss = m.links.FromMiss()
	stats.LinkTargetGone = m.links.TargetMiss()

	// pagelinks was the last consumer of both scratch maps; the pages
	// vector and TitleLookup live on for interactive query resolution.
	m.pages.DestroyIDLookup()
	m.targets.Destroy()

	log.Info().
		Dur("total", stats.TotalDuration()).
		Int("pages", stats.Pages).
		Int("edges", stats.Edges).
		Msg("load run complete")

	return stats, nil
}

// Pages returns the loaded page set. Valid after Run returns successfully.
func (m *Manager) Pages() []Page { return m.pages.Pages() }

// PageLoader exposes the underlying page loader for title lookups
// (FindPageIndexByTitle, SuggestTitles) during interactive queries.
func (m *Manager) PageLoader() *PageLoader { return m.pages }

// Edges returns the resolved edge list. Valid after Run returns
// successfully.
func (m *Manager) Edges() []Edge { return m.links.Edges() }
