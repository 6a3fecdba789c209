// Package transfer projects the relational catalog into the property
// graph. It reads a full snapshot through the repos, maps it with pure
// functions and hands the batches to the graph layer, so running it
// twice over an unchanged store changes nothing.
package transfer

import (
	"context"

	"github.com/vinishamanek/bookgraph/internal/data/graph"
	"github.com/vinishamanek/bookgraph/internal/data/repos/catalog"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
	"github.com/vinishamanek/bookgraph/internal/platform/neo4jdb"
)

type Repos struct {
	Books      catalog.BookRepo
	Authors    catalog.AuthorRepo
	Publishers catalog.PublisherRepo
	Categories catalog.CategoryRepo
	Subjects   catalog.SubjectRepo
	Links      catalog.LinkRepo
	Prices     catalog.PriceRepo
}

type Engine struct {
	repos  Repos
	client *neo4jdb.Client
	log    *logger.Logger
}

func New(repos Repos, client *neo4jdb.Client, log *logger.Logger) *Engine {
	return &Engine{repos: repos, client: client, log: log.With("component", "GraphTransfer")}
}

type Summary struct {
	Nodes int
	Edges int
}

// Run reads the snapshot, projects it and writes the graph. Errors from
// the projection are integrity failures and abort before any write.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	snap, err := e.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	nodes, edges, err := Project(snap)
	if err != nil {
		return nil, err
	}

	if err := graph.UpsertCatalogGraph(ctx, e.client, e.log, nodes, edges); err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, batch := range nodes {
		summary.Nodes += len(batch.Rows)
	}
	for _, batch := range edges {
		summary.Edges += len(batch.Rows)
	}
	e.log.Info("graph transfer complete", "nodes", summary.Nodes, "edges", summary.Edges)
	return summary, nil
}

func (e *Engine) readSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error

	if snap.Books, err = e.repos.Books.GetAll(ctx, nil); err != nil {
		return nil, err
	}
	if snap.Authors, err = e.repos.Authors.GetAll(ctx, nil); err != nil {
		return nil, err
	}
	if snap.Publishers, err = e.repos.Publishers.GetAll(ctx, nil); err != nil {
		return nil, err
	}
	if snap.Categories, err = e.repos.Categories.GetAll(ctx, nil); err != nil {
		return nil, err
	}
	if snap.Subjects, err = e.repos.Subjects.GetAll(ctx, nil); err != nil {
		return nil, err
	}
	if snap.BookAuthors, err = e.repos.Links.GetAllBookAuthors(ctx, nil); err != nil {
		return nil, err
	}
	if snap.BookPublishers, err = e.repos.Links.GetAllBookPublishers(ctx, nil); err != nil {
		return nil, err
	}
	if snap.BookCategories, err = e.repos.Links.GetAllBookCategories(ctx, nil); err != nil {
		return nil, err
	}
	if snap.BookSubjects, err = e.repos.Links.GetAllBookSubjects(ctx, nil); err != nil {
		return nil, err
	}
	if snap.Prices, err = e.repos.Prices.GetAll(ctx, nil); err != nil {
		return nil, err
	}
	return snap, nil
}
