package catalog

import (
	"context"
	"testing"

	"github.com/vinishamanek/bookgraph/internal/data/repos/testutil"
	types "github.com/vinishamanek/bookgraph/internal/domain"
)

func TestLinkRepoIdempotence(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewLinkRepo(db, testutil.Logger(t))

	book := testutil.SeedBook(t, ctx, tx, "9780000000300", types.FormatPhysical)
	author := testutil.SeedAuthor(t, ctx, tx, "Ann Author")
	publisher := testutil.SeedPublisher(t, ctx, tx, "Example House")

	link := []*types.BookAuthor{{BookID: book.ID, AuthorID: author.ID, Role: "author"}}
	if err := repo.LinkAuthors(ctx, tx, link); err != nil {
		t.Fatalf("LinkAuthors: %v", err)
	}
	// Same pair again: the composite unique absorbs it.
	if err := repo.LinkAuthors(ctx, tx, []*types.BookAuthor{{BookID: book.ID, AuthorID: author.ID}}); err != nil {
		t.Fatalf("LinkAuthors(rerun): %v", err)
	}
	if n, err := repo.CountBookAuthors(ctx, tx); err != nil || n != 1 {
		t.Fatalf("CountBookAuthors: n=%d err=%v", n, err)
	}

	if err := repo.LinkPublishers(ctx, tx, []*types.BookPublisher{{BookID: book.ID, PublisherID: publisher.ID}}); err != nil {
		t.Fatalf("LinkPublishers: %v", err)
	}
	if rows, err := repo.GetAllBookPublishers(ctx, tx); err != nil || len(rows) != 1 {
		t.Fatalf("GetAllBookPublishers: len=%d err=%v", len(rows), err)
	}
	if rows, err := repo.GetAllBookAuthors(ctx, tx); err != nil || len(rows) != 1 || rows[0].Role != "author" {
		t.Fatalf("GetAllBookAuthors: %v err=%v", rows, err)
	}
}
