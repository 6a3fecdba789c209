// Package catalog wires the ingest pipeline end to end: pull records
// from the configured sources, reconcile them into canonical books,
// load the relational store, then optionally project the graph.
package catalog

import (
	"context"
	"fmt"

	"github.com/vinishamanek/bookgraph/internal/modules/catalog/load"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/reconcile"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/source"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/transfer"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type Pipeline struct {
	log        *logger.Logger
	reconciler *reconcile.Reconciler
	loader     *load.Loader
	transfer   *transfer.Engine
}

// NewPipeline assembles the stages. transferEngine may be nil for a
// relational-only deployment.
func NewPipeline(log *logger.Logger, reconciler *reconcile.Reconciler, loader *load.Loader, transferEngine *transfer.Engine) *Pipeline {
	return &Pipeline{
		log:        log.With("component", "CatalogPipeline"),
		reconciler: reconciler,
		loader:     loader,
		transfer:   transferEngine,
	}
}

type IngestSummary struct {
	Records        int
	Books          int
	Excluded       int
	ExcludedByKind map[reconcile.ErrorKind]int
	Load           *load.Summary
}

// RunIngest drains every source, reconciles and loads. Source read
// errors abort the run before anything is written; reconciliation
// exclusions are reported in the summary, not treated as failures.
func (p *Pipeline) RunIngest(ctx context.Context, sources []source.Source) (*IngestSummary, error) {
	var records []source.Record
	for _, src := range sources {
		before := len(records)
		err := src.Each(ctx, func(rec source.Record) error {
			records = append(records, rec)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read source %s: %w", src.Name(), err)
		}
		p.log.Info("source drained", "source", src.Name(), "records", len(records)-before)
	}

	result, err := p.reconciler.Reconcile(ctx, records)
	if err != nil {
		return nil, err
	}

	loadSummary, err := p.loader.Load(ctx, result.Books)
	if err != nil {
		return nil, err
	}

	summary := &IngestSummary{
		Records:        len(records),
		Books:          len(result.Books),
		Excluded:       len(result.Errors),
		ExcludedByKind: result.Kinds,
		Load:           loadSummary,
	}
	p.log.Info("ingest complete",
		"records", summary.Records,
		"books", summary.Books,
		"excluded", summary.Excluded,
		"excluded_by_kind", summary.ExcludedByKind,
		"created", loadSummary.BooksCreated,
		"updated", loadSummary.BooksUpdated,
		"rejected", loadSummary.BooksRejected,
		"format_conflicts", loadSummary.FormatConflicts)
	return summary, nil
}

// RunTransfer projects the current relational snapshot into the graph.
// A pipeline without a transfer engine skips the step.
func (p *Pipeline) RunTransfer(ctx context.Context) (*transfer.Summary, error) {
	if p.transfer == nil {
		p.log.Info("graph transfer skipped, no graph configured")
		return nil, nil
	}
	return p.transfer.Run(ctx)
}
