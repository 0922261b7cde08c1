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

// linkTargetRecord pairs the raw linktarget row id with the page index its
// title resolved to.
type linkTargetRecord struct {
	wikiID     uint64
	pageIndex  uint32
	titleFound bool
}

// LinkTargetLoader implements C5: it parses the `linktarget` table and
// resolves each row's (namespace, title) pair to a page index using the
// PageLoader's title lookup built by C4. Rows whose title has no matching
// page (link targets that point at an article that doesn't exist, or
// point outside namespace 0) are counted but dropped.
type LinkTargetLoader struct {
	lookup IndexMap[uint64, uint32]

	mapped    uint64
	titleMiss uint64

	log zerolog.Logger
}

// NewLinkTargetLoader constructs an empty loader.
func NewLinkTargetLoader(hashmapImpl HashmapImpl, log zerolog.Logger) *LinkTargetLoader {
	return &LinkTargetLoader{
		lookup: NewIndexMap[uint64, uint32](hashmapImpl),
		log:    log,
	}
}

func parseLinkTargetLine(pages *PageLoader) pump.ParseFn[[]linkTargetRecord] {
	return func(line []byte) []linkTargetRecord {
		tuples := sqlparse.ExtractTuples(line)
		out := make([]linkTargetRecord, 0, len(tuples))

		for _, tuple := range tuples {
			p := sqlparse.NewTupleParser(tuple)

			ltID, err := p.NextUint()
			if err != nil {
				continue
			}
			namespace, err := p.NextInt()
			if err != nil {
				continue
			}
			title, err := p.NextString()
			if err != nil {
				continue
			}
			if namespace != 0 {
				out = append(out, linkTargetRecord{wikiID: ltID, titleFound: false})
				continue
			}

			pageIndex, found := pages.FindPageIndexByTitle(title)
			out = append(out, linkTargetRecord{wikiID: ltID, pageIndex: pageIndex, titleFound: found})
		}
		return out
	}
}

func (l *LinkTargetLoader) insert(batch []linkTargetRecord) {
	for _, rec := range batch {
		if !rec.titleFound {
			l.titleMiss++
			continue
		}
		l.lookup.Set(rec.wikiID, rec.pageIndex)
		l.mapped++
	}
}

// LoadLinkTargetTable drives reader over file, resolving every row against
// pages's title lookup. pages must already be fully loaded (C4 complete).
func (l *LinkTargetLoader) LoadLinkTargetTable(file wikifile.WikiFile, r reader.LineReader, pages *PageLoader, progress ProgressFunc, pool *workerpool.Pool, maxOutstanding int) error {
	var firstLineLen atomic.Int64
	var once sync.Once
	baseParse := parseLinkTargetLine(pages)
	parseFn := func(line []byte) []linkTargetRecord {
		once.Do(func() { firstLineLen.Store(int64(len(line))) })
		return baseParse(line)
	}

	onFirst := func(batch []linkTargetRecord) {
		estimate, err := reader.EstimatedItemCount(file.DataPath(), int(firstLineLen.Load()))
		if err != nil {
			l.log.Debug().Err(err).Msg("linktarget loader: failed to estimate item count, skipping reservation")
			return
		}
		l.lookup.Reserve(int(estimate))
	}

	onResult := func(batch []linkTargetRecord) {
		l.insert(batch)
		if progress != nil {
			progress(l.mapped+l.titleMiss, 0, r.GetProgress())
		}
	}

	if err := pump.Run(r, parseFn, onResult, onFirst, pool, maxOutstanding); err != nil {
		return fmt.Errorf("loader: linktarget table: %w", err)
	}

	l.log.Info().
		Uint64("mapped", l.mapped).
		Uint64("title_miss", l.titleMiss).
		Msg("linktarget table loaded")
	return nil
}

// Resolve returns the page index a linktarget row id maps to.
func (l *LinkTargetLoader) Resolve(ltID uint64) (uint32, bool) {
	if l.lookup == nil {
		return 0, false
	}
	return l.lookup.Get(ltID)
}

// Mapped returns the count of linktarget rows successfully resolved to a
// page.
func (l *LinkTargetLoader) Mapped() uint64 { return l.mapped }

// TitleMiss returns the count of linktarget rows whose title did not
// resolve to a known page (non-namespace-0 targets included).
func (l *LinkTargetLoader) TitleMiss() uint64 { return l.titleMiss }

// Destroy frees the lookup map, per spec §4.7 step 5 (LinkTargetLookup is
// discarded once C6 has consumed it).
func (l *LinkTargetLoader) Destroy() {
	if l.lookup != nil {
		l.log.Debug().Msg("destroying linktarget lookup map to free memory")
		l.lookup = nil
	}
}
