package loader

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/pump"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/reader"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/sqlparse"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/wikifile"
	"github.com/WeGoToMars/WikiGraph-Explorer/wgraph/workerpool"
	"github.com/rs/zerolog"
)

// Page is a record in the dense pages sequence (spec §3). A page's index
// in Pages() is its canonical identifier within the graph.
type Page struct {
	Title      string
	IsRedirect bool
}

// pageRecord pairs a parsed Page with its Wikipedia page_id, the unit of
// work handed from parsePageLine to insertPages.
type pageRecord struct {
	wikiID uint32
	page   Page
}

// ProgressFunc mirrors the DataLoaderBase::ProgressCallback contract:
// count of records processed so far, records/sec, and reader byte
// progress.
type ProgressFunc func(count uint64, rate float64, progress reader.ReadProgress)

// PageLoader implements C4: it parses the `page` table, builds the
// id-to-index and title-to-index maps, and owns the dense pages vector
// for the remainder of the process (TitleLookup survives into
// interactive query mode; PageIdLookup is destroyed by LoaderManager
// after C6 finishes).
type PageLoader struct {
	pages []Page

	idLookup    IndexMap[uint32, uint32]
	titleLookup IndexMap[string, uint32]
	titleRadix  *TitleRadixIndex

	redirectCount uint64

	log zerolog.Logger
}

// NewPageLoader constructs an empty loader using the given hashmap
// implementation for its lookup maps.
func NewPageLoader(hashmapImpl HashmapImpl, log zerolog.Logger) *PageLoader {
	return &PageLoader{
		idLookup:    NewIndexMap[uint32, uint32](hashmapImpl),
		titleLookup: NewIndexMap[string, uint32](hashmapImpl),
		titleRadix:  NewTitleRadixIndex(),
		log:         log,
	}
}

// parsePageLine parses one INSERT INTO `page` line into a batch of
// (wiki_id, Page) records, per spec §4.4. Records failing to parse or
// outside namespace 0 are dropped silently.
func parsePageLine(line []byte) []pageRecord {
	tuples := sqlparse.ExtractTuples(line)
	out := make([]pageRecord, 0, len(tuples))

	for _, tuple := range tuples {
		p := sqlparse.NewTupleParser(tuple)

		pageID, err := p.NextUint()
		if err != nil {
			continue
		}
		namespace, err := p.NextInt()
		if err != nil {
			continue
		}
		if namespace != 0 {
			continue
		}
		title, err := p.NextString()
		if err != nil {
			continue
		}
		isRedirect, err := p.NextBool()
		if err != nil {
			continue
		}

		out = append(out, pageRecord{
			wikiID: uint32(pageID),
			page:   Page{Title: title, IsRedirect: isRedirect},
		})
	}
	return out
}

func (l *PageLoader) insertPages(batch []pageRecord) {
	for _, rec := range batch {
		index := uint32(len(l.pages))
		l.pages = append(l.pages, rec.page)
		l.idLookup.Set(rec.wikiID, index)
		// First-wins on title collision: redirect resolution falls out
		// of first-appearance ordering (spec §3, §9).
		if _, exists := l.titleLookup.Get(rec.page.Title); !exists {
			l.titleLookup.Set(rec.page.Title, index)
			l.titleRadix.Insert(rec.page.Title, index)
		}
		if rec.page.IsRedirect {
			l.redirectCount++
		}
	}
}

// LoadPageTable drives reader over file, parsing every INSERT INTO
// `page` line and building the pages vector plus both lookup maps. The
// first successfully parsed batch is used to reserve capacity for all
// three via the item-count estimator (spec §4.4).
func (l *PageLoader) LoadPageTable(file wikifile.WikiFile, r reader.LineReader, progress ProgressFunc, pool *workerpool.Pool, maxOutstanding int) error {
	var firstLineLen atomic.Int64
	var once sync.Once
	parseFn := func(line []byte) []pageRecord {
		once.Do(func() { firstLineLen.Store(int64(len(line))) })
		return parsePageLine(line)
	}

	onFirst := func(batch []pageRecord) {
		estimate, err := reader.EstimatedItemCount(file.DataPath(), int(firstLineLen.Load()))
		if err != nil {
			l.log.Debug().Err(err).Msg("page loader: failed to estimate item count, skipping reservation")
		} else {
			l.pages = make([]Page, 0, int(estimate))
			l.idLookup.Reserve(int(estimate))
			l.titleLookup.Reserve(int(estimate))
		}
	}

	onResult := func(batch []pageRecord) {
		l.insertPages(batch)
		if progress != nil {
			progress(uint64(len(l.pages)), 0, r.GetProgress())
		}
	}

	if err := pump.Run(r, parseFn, onResult, onFirst, pool, maxOutstanding); err != nil {
		return fmt.Errorf("loader: page table: %w", err)
	}

	// pages is used through the lifetime of the process; shrink it to
	// its actual length, matching the C++ loader's shrink_to_fit.
	shrunk := make([]Page, len(l.pages))
	copy(shrunk, l.pages)
	l.pages = shrunk

	l.log.Info().
		Int("pages", len(l.pages)).
		Uint64("redirects", l.redirectCount).
		Msg("page table loaded")
	return nil
}

// Pages returns the dense, frozen pages sequence.
func (l *PageLoader) Pages() []Page { return l.pages }

// PageCount returns the number of loaded pages.
func (l *PageLoader) PageCount() int { return len(l.pages) }

// RedirectCount returns the number of pages loaded with is_redirect set.
func (l *PageLoader) RedirectCount() uint64 { return l.redirectCount }

// FindPageIndexByID resolves a Wikipedia page_id via the id lookup.
// Returns false once the id lookup has been destroyed.
func (l *PageLoader) FindPageIndexByID(pageID uint32) (uint32, bool) {
	if l.idLookup == nil {
		return 0, false
	}
	return l.idLookup.Get(pageID)
}

// FindPageIndexByTitle resolves an article title via the title lookup.
func (l *PageLoader) FindPageIndexByTitle(title string) (uint32, bool) {
	if l.titleLookup == nil {
		return 0, false
	}
	return l.titleLookup.Get(title)
}

// SuggestTitles returns up to limit page indices whose title starts with
// prefix, using the radix index — a convenience for interactive query
// resolution when an exact title match fails.
func (l *PageLoader) SuggestTitles(prefix string, limit int) []uint32 {
	return l.titleRadix.PrefixSearch(prefix, limit)
}

// DestroyIDLookup frees the page id lookup map, per spec §4.7 step 5.
func (l *PageLoader) DestroyIDLookup() {
	if l.idLookup != nil {
		l.log.Debug().Msg("destroying page id lookup map to free memory")
		l.idLookup = nil
	}
}

// HasIDLookup reports whether the id lookup map is still present.
func (l *PageLoader) HasIDLookup() bool { return l.idLookup != nil }
