// Package reconcile resolves raw records from multiple catalogs into
// canonical books. It is a pure transformation: all matching state lives
// in the run-local dedup index and nothing here touches a store.
package reconcile

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vinishamanek/bookgraph/internal/modules/catalog/source"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type Reconciler struct {
	log     *logger.Logger
	workers int
}

func New(log *logger.Logger, workers int) *Reconciler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Reconciler{log: log.With("component", "Reconciler"), workers: workers}
}

// Result is a reconciliation run's output: canonical books plus the
// per-record failures that were isolated from it, tallied by kind.
type Result struct {
	Books  []*Book
	Errors []*RecordError
	Kinds  map[ErrorKind]int
}

// Reconcile maps raw records onto canonical books. Extraction of
// independent records is fanned out across workers; the dedup index is
// fed by a single goroutine, which is what serializes natural-key
// matching without per-key locks.
func (r *Reconciler) Reconcile(ctx context.Context, records []source.Record) (*Result, error) {
	extractedRecs := make([]extracted, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			extractedRecs[i] = extract(records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Single-writer dedup stage.
	index := newDedupIndex()
	for i, ex := range extractedRecs {
		index.add(i, ex)
	}

	result := &Result{Kinds: map[ErrorKind]int{}}
	for _, class := range index.classes() {
		items := make([]extracted, 0, len(class))
		matchedBy := make([]string, 0, len(class))
		for _, idx := range class {
			items = append(items, extractedRecs[idx])
			matchedBy = append(matchedBy, index.matchedBy[idx])
		}
		book, recErr := mergeClass(items, matchedBy)
		if recErr != nil {
			r.log.Warn("record class excluded", "kind", recErr.Kind, "refs", recErr.Refs, "error", recErr.Err)
			result.Errors = append(result.Errors, recErr)
			result.Kinds[recErr.Kind]++
			continue
		}
		result.Books = append(result.Books, book)
	}

	r.log.Info("reconciliation complete",
		"records", len(records),
		"books", len(result.Books),
		"excluded", len(result.Errors),
		"excluded_by_kind", result.Kinds)
	return result, nil
}
