package catalog

import (
	"context"
	"testing"

	"github.com/vinishamanek/bookgraph/internal/data/repos/testutil"
	types "github.com/vinishamanek/bookgraph/internal/domain"
)

func TestAuthorRepoUpsertByNaturalKey(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAuthorRepo(db, testutil.Logger(t))

	first, err := repo.UpsertByNaturalKey(ctx, tx, &types.Author{FullName: "Martin Fowler"})
	if err != nil || first == nil {
		t.Fatalf("Upsert(create): got=%v err=%v", first, err)
	}

	// Same name again: no second row.
	again, err := repo.UpsertByNaturalKey(ctx, tx, &types.Author{FullName: "Martin Fowler"})
	if err != nil || again == nil || again.ID != first.ID {
		t.Fatalf("Upsert(dedupe): got=%v err=%v", again, err)
	}

	// A richer record fills missing fields but does not blank anything.
	enriched, err := repo.UpsertByNaturalKey(ctx, tx, &types.Author{
		FullName:    "Martin Fowler",
		ExternalKey: testutil.PtrStr("/authors/OL26320A"),
		Bio:         "Author and speaker on software development.",
	})
	if err != nil || enriched == nil || enriched.ID != first.ID {
		t.Fatalf("Upsert(enrich): got=%v err=%v", enriched, err)
	}
	rows, err := repo.GetByFullNames(ctx, tx, []string{"Martin Fowler"})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByFullNames: len=%d err=%v", len(rows), err)
	}
	if rows[0].ExternalKey == nil || *rows[0].ExternalKey != "/authors/OL26320A" {
		t.Fatalf("external key not filled: %+v", rows[0])
	}
	if rows[0].Bio == "" {
		t.Fatalf("bio not filled: %+v", rows[0])
	}

	// A sparse record after the rich one changes nothing.
	if _, err := repo.UpsertByNaturalKey(ctx, tx, &types.Author{FullName: "Martin Fowler"}); err != nil {
		t.Fatalf("Upsert(sparse rerun): %v", err)
	}
	rows, err = repo.GetByFullNames(ctx, tx, []string{"Martin Fowler"})
	if err != nil || len(rows) != 1 || rows[0].Bio == "" {
		t.Fatalf("sparse rerun modified row: len=%d err=%v", len(rows), err)
	}

	// Matching by external key resolves even when stored under the same name.
	byKey, err := repo.UpsertByNaturalKey(ctx, tx, &types.Author{
		FullName:    "Martin Fowler",
		ExternalKey: testutil.PtrStr("/authors/OL26320A"),
	})
	if err != nil || byKey == nil || byKey.ID != first.ID {
		t.Fatalf("Upsert(by key): got=%v err=%v", byKey, err)
	}

	if all, err := repo.GetAll(ctx, tx); err != nil || len(all) != 1 {
		t.Fatalf("GetAll: len=%d err=%v", len(all), err)
	}
}
