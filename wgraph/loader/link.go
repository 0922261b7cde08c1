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

// Edge is a resolved directed link between two page indices, the unit C8
// consumes to build the CSR graph.
type Edge struct {
	From uint32
	To   uint32
}

// LinkLoader implements C6: it parses the `pagelinks` table, resolving
// page_from_id through PageLoader's id lookup and link_target_id through
// LinkTargetLoader's lookup, and accumulates the resulting edge list.
type LinkLoader struct {
	edges []Edge

	fromMiss   uint64
	targetMiss uint64

	log zerolog.Logger
}

// NewLinkLoader constructs an empty loader.
func NewLinkLoader(log zerolog.Logger) *LinkLoader {
	return &LinkLoader{log: log}
}

type linkRecord struct {
	edge  Edge
	valid bool
	// fromMiss distinguishes which side of the join failed so callers can
	// attribute misses correctly.
	fromMiss bool
}

func parseLinkLine(pages *PageLoader, targets *LinkTargetLoader) pump.ParseFn[[]linkRecord] {
	return func(line []byte) []linkRecord {
		tuples := sqlparse.ExtractTuples(line)
		out := make([]linkRecord, 0, len(tuples))

		for _, tuple := range tuples {
			p := sqlparse.NewTupleParser(tuple)

			fromID, err := p.NextUint()
			if err != nil {
				continue
			}
			fromNamespace, err := p.NextInt()
			if err != nil {
				continue
			}
			if fromNamespace != 0 {
				continue
			}
			ltID, err := p.NextUint()
			if err != nil {
				continue
			}

			fromIndex, fromOK := pages.FindPageIndexByID(uint32(fromID))
			if !fromOK {
				out = append(out, linkRecord{fromMiss: true})
				continue
			}
			toIndex, toOK := targets.Resolve(ltID)
			if !toOK {
				out = append(out, linkRecord{fromMiss: false, valid: false})
				continue
			}

			out = append(out, linkRecord{edge: Edge{From: fromIndex, To: toIndex}, valid: true})
		}
		return out
	}
}

func (l *LinkLoader) insert(batch []linkRecord) {
	for _, rec := range batch {
		switch {
		case rec.valid:
			l.edges = append(l.edges, rec.edge)
		case rec.fromMiss:
			l.fromMiss++
		default:
			l.targetMiss++
		}
	}
}

// LoadPageLinksTable drives reader over file, resolving every row through
// pages and targets and appending valid edges to the edge list. Both
// dependencies must already be fully loaded.
func (l *LinkLoader) LoadPageLinksTable(file wikifile.WikiFile, r reader.LineReader, pages *PageLoader, targets *LinkTargetLoader, progress ProgressFunc, pool *workerpool.Pool, maxOutstanding int) error {
	var firstLineLen atomic.Int64
	var once sync.Once
	baseParse := parseLinkLine(pages, targets)
	parseFn := func(line []byte) []linkRecord {
		once.Do(func() { firstLineLen.Store(int64(len(line))) })
		return baseParse(line)
	}

	onFirst := func(batch []linkRecord) {
		estimate, err := reader.EstimatedItemCount(file.DataPath(), int(firstLineLen.Load()))
		if err != nil {
			l.log.Debug().Err(err).Msg("link loader: failed to estimate item count, skipping reservation")
			return
		}
		l.edges = make([]Edge, 0, int(estimate))
	}

	onResult := func(batch []linkRecord) {
		l.insert(batch)
		if progress != nil {
			progress(uint64(len(l.edges)), 0, r.GetProgress())
		}
	}

	if err := pump.Run(r, parseFn, onResult, onFirst, pool, maxOutstanding); err != nil {
		return fmt.Errorf("loader: pagelinks table: %w", err)
	}

	shrunk := make([]Edge, len(l.edges))
	copy(shrunk, l.edges)
	l.edges = shrunk

	l.log.Info().
		Int("edges", len(l.edges)).
		Uint64("from_miss", l.fromMiss).
		Uint64("target_miss", l.targetMiss).
		Msg("pagelinks table loaded")
	return nil
}

// Edges returns the resolved edge list.
func (l *LinkLoader) Edges() []Edge { return l.edges }

// FromMiss returns the count of rows whose page_from_id did not resolve
// to a known page.
func (l *LinkLoader) FromMiss() uint64 { return l.fromMiss }

// TargetMiss returns the count of rows whose link_target_id did not
// resolve through the linktarget lookup.
func (l *LinkLoader) TargetMiss() uint64 { return l.targetMiss }
