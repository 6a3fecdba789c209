package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vinishamanek/bookgraph/internal/data/db"
	catalogrepos "github.com/vinishamanek/bookgraph/internal/data/repos/catalog"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/load"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/reconcile"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/source"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/transfer"
	"github.com/vinishamanek/bookgraph/internal/platform/envutil"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
	"github.com/vinishamanek/bookgraph/internal/platform/neo4jdb"
)

func main() {
	// Logger
	logMode := envutil.Str("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	thePG := postgresService.DB()
	if err := db.AutoMigrateAll(thePG); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}

	// Repos
	log.Info("Setting up repos...")
	bookRepo := catalogrepos.NewBookRepo(thePG, log)
	authorRepo := catalogrepos.NewAuthorRepo(thePG, log)
	publisherRepo := catalogrepos.NewPublisherRepo(thePG, log)
	categoryRepo := catalogrepos.NewCategoryRepo(thePG, log)
	subjectRepo := catalogrepos.NewSubjectRepo(thePG, log)
	linkRepo := catalogrepos.NewLinkRepo(thePG, log)
	priceRepo := catalogrepos.NewPriceRepo(thePG, log)
	bookSourceRepo := catalogrepos.NewBookSourceRepo(thePG, log)

	// Sources: dumped JSON arrays from the fetch side, one file per catalog.
	var sources []source.Source
	if path := envutil.Str("GOOGLEBOOKS_JSON", ""); path != "" {
		sources = append(sources, &source.JSONFileSource{
			SourceName: source.GoogleBooks,
			Path:       path,
			Map:        source.MapGoogleBooksVolume,
		})
	}
	if path := envutil.Str("OPENLIBRARY_JSON", ""); path != "" {
		sources = append(sources, &source.JSONFileSource{
			SourceName: source.OpenLibrary,
			Path:       path,
			Map:        source.MapOpenLibraryDoc,
		})
	}

	// Neo4j (optional)
	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Fatal("Neo4j init failed", "error", err)
	}
	if neoClient != nil {
		defer neoClient.Close(ctx)
	}

	// Pipeline
	reconciler := reconcile.New(log, envutil.Int("RECONCILE_WORKERS", 0))
	loader := load.New(thePG, load.Repos{
		Books:      bookRepo,
		Authors:    authorRepo,
		Publishers: publisherRepo,
		Categories: categoryRepo,
		Subjects:   subjectRepo,
		Links:      linkRepo,
		Prices:     priceRepo,
		Sources:    bookSourceRepo,
	}, log)

	var transferEngine *transfer.Engine
	if neoClient != nil {
		transferEngine = transfer.New(transfer.Repos{
			Books:      bookRepo,
			Authors:    authorRepo,
			Publishers: publisherRepo,
			Categories: categoryRepo,
			Subjects:   subjectRepo,
			Links:      linkRepo,
			Prices:     priceRepo,
		}, neoClient, log)
	}

	pipeline := catalog.NewPipeline(log, reconciler, loader, transferEngine)

	if len(sources) == 0 {
		log.Info("No source files configured, skipping ingest")
	} else {
		summary, err := pipeline.RunIngest(ctx, sources)
		if err != nil {
			log.Fatal("Ingest failed", "error", err)
		}
		log.Info("Ingest summary",
			"records", summary.Records,
			"books", summary.Books,
			"excluded", summary.Excluded)
	}

	if _, err := pipeline.RunTransfer(ctx); err != nil {
		log.Fatal("Graph transfer failed", "error", err)
	}
}
