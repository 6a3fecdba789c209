package load

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/data/repos/catalog"
	"github.com/vinishamanek/bookgraph/internal/data/repos/testutil"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/reconcile"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/source"
)

func setupLoader(t *testing.T) (*Loader, *gorm.DB) {
	t.Helper()
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	repos := Repos{
		Books:      catalog.NewBookRepo(tx, log),
		Authors:    catalog.NewAuthorRepo(tx, log),
		Publishers: catalog.NewPublisherRepo(tx, log),
		Categories: catalog.NewCategoryRepo(tx, log),
		Subjects:   catalog.NewSubjectRepo(tx, log),
		Links:      catalog.NewLinkRepo(tx, log),
		Prices:     catalog.NewPriceRepo(tx, log),
		Sources:    catalog.NewBookSourceRepo(tx, log),
	}
	return New(tx, repos, log), tx
}

func count(t *testing.T, tx *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func sampleBook() *reconcile.Book {
	rating := 4.2
	amount := 9.99
	return &reconcile.Book{
		ISBN13:        "9780000000903",
		GoogleBooksID: "gb-load-1",
		Title:         "Loaded Work",
		LanguageCode:  "en",
		Format:        types.FormatEBook,
		AvgRating:     &rating,
		Authors:       []reconcile.Author{{Name: "Load Author", Key: "OL900A"}},
		Publishers:    []string{"Load House"},
		Categories:    []string{"Fiction"},
		Subjects:      []string{"Loading"},
		Prices: []reconcile.PriceObs{{
			Country:      "US",
			Saleability:  "FOR_SALE",
			ListAmount:   &amount,
			ListCurrency: "USD",
			ObservedAt:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		}},
		Sources: []reconcile.SourceRef{{
			Source:    source.GoogleBooks,
			SourceID:  "gb-load-1",
			MatchedBy: "new",
			FetchedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Payload:   map[string]any{"title": "Loaded Work"},
		}},
	}
}

func TestLoaderCreateThenRerunIsIdempotent(t *testing.T) {
	loader, tx := setupLoader(t)
	ctx := context.Background()

	first, err := loader.Load(ctx, []*reconcile.Book{sampleBook()})
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.BooksCreated != 1 || first.BooksUpdated != 0 || first.PricesAppended != 1 {
		t.Fatalf("first summary: %+v", first)
	}

	books := count(t, tx, &types.Book{})
	authors := count(t, tx, &types.Author{})
	bookAuthors := count(t, tx, &types.BookAuthor{})
	prices := count(t, tx, &types.Price{})
	sources := count(t, tx, &types.BookSource{})

	second, err := loader.Load(ctx, []*reconcile.Book{sampleBook()})
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.BooksCreated != 0 || second.BooksUpdated != 1 {
		t.Fatalf("second summary: %+v", second)
	}
	if second.PricesAppended != 0 {
		t.Fatalf("rerun appended a price window: %+v", second)
	}

	if n := count(t, tx, &types.Book{}); n != books {
		t.Fatalf("book rows changed on rerun: %d -> %d", books, n)
	}
	if n := count(t, tx, &types.Author{}); n != authors {
		t.Fatalf("author rows changed on rerun: %d -> %d", authors, n)
	}
	if n := count(t, tx, &types.BookAuthor{}); n != bookAuthors {
		t.Fatalf("book_author rows changed on rerun: %d -> %d", bookAuthors, n)
	}
	if n := count(t, tx, &types.Price{}); n != prices {
		t.Fatalf("price rows changed on rerun: %d -> %d", prices, n)
	}
	if n := count(t, tx, &types.BookSource{}); n != sources {
		t.Fatalf("book_source rows changed on rerun: %d -> %d", sources, n)
	}
}

func TestLoaderPriceChangeClosesWindow(t *testing.T) {
	loader, tx := setupLoader(t)
	ctx := context.Background()

	if _, err := loader.Load(ctx, []*reconcile.Book{sampleBook()}); err != nil {
		t.Fatalf("first load: %v", err)
	}

	later := sampleBook()
	raised := 12.99
	later.Prices[0].ListAmount = &raised
	later.Prices[0].ObservedAt = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	summary, err := loader.Load(ctx, []*reconcile.Book{later})
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if summary.PricesAppended != 1 {
		t.Fatalf("price change not appended: %+v", summary)
	}

	var open int64
	if err := tx.Model(&types.Price{}).Where("valid_to IS NULL").Count(&open).Error; err != nil {
		t.Fatalf("count open: %v", err)
	}
	if open != 1 {
		t.Fatalf("expected exactly one open window, got %d", open)
	}
	if n := count(t, tx, &types.Price{}); n != 2 {
		t.Fatalf("expected two price rows, got %d", n)
	}
}

func TestLoaderFormatConflictSkipsBookAndContinues(t *testing.T) {
	loader, tx := setupLoader(t)
	ctx := context.Background()

	seeded := testutil.SeedBook(t, ctx, tx, "9780000000910", types.FormatPhysical)

	conflicting := sampleBook()
	conflicting.ISBN13 = "9780000000910"
	conflicting.GoogleBooksID = ""

	healthy := sampleBook()
	healthy.ISBN13 = "9780000000941"
	healthy.GoogleBooksID = "gb-load-3"

	summary, err := loader.Load(ctx, []*reconcile.Book{conflicting, healthy})
	if err != nil {
		t.Fatalf("conflict must not abort the run: %v", err)
	}
	if summary.FormatConflicts != 1 {
		t.Fatalf("format conflict not counted: %+v", summary)
	}
	if summary.BooksCreated != 1 {
		t.Fatalf("book after the conflict was not loaded: %+v", summary)
	}

	var stored types.Book
	if err := tx.Where("id = ?", seeded.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload seeded book: %v", err)
	}
	if stored.Format != types.FormatPhysical {
		t.Fatalf("conflicting load rewrote the stored format: %q", stored.Format)
	}
}

func TestLoaderBuildsCategoryHierarchy(t *testing.T) {
	loader, tx := setupLoader(t)
	ctx := context.Background()

	book := sampleBook()
	book.ISBN13 = "9780000000958"
	book.GoogleBooksID = "gb-load-4"
	book.Categories = []string{"Fiction / Thrillers / Suspense"}

	if _, err := loader.Load(ctx, []*reconcile.Book{book}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var cats []types.Category
	if err := tx.Where("name IN ?", []string{"Fiction", "Thrillers", "Suspense"}).Find(&cats).Error; err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected three hierarchy levels, got %d", len(cats))
	}
	byName := map[string]types.Category{}
	for _, c := range cats {
		byName[c.Name] = c
	}
	if byName["Fiction"].ParentID != nil {
		t.Fatalf("root category has a parent: %+v", byName["Fiction"])
	}
	if byName["Thrillers"].ParentID == nil || *byName["Thrillers"].ParentID != byName["Fiction"].ID {
		t.Fatalf("Thrillers not parented to Fiction: %+v", byName["Thrillers"])
	}
	if byName["Suspense"].ParentID == nil || *byName["Suspense"].ParentID != byName["Thrillers"].ID {
		t.Fatalf("Suspense not parented to Thrillers: %+v", byName["Suspense"])
	}

	// The book links to the leaf only.
	var links []types.BookCategory
	if err := tx.Where("category_id IN ?", []any{byName["Fiction"].ID, byName["Thrillers"].ID, byName["Suspense"].ID}).Find(&links).Error; err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 1 || links[0].CategoryID != byName["Suspense"].ID {
		t.Fatalf("expected one link to the leaf: %+v", links)
	}
}

func TestSplitCategoryPath(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Fiction / Thrillers / Suspense", []string{"Fiction", "Thrillers", "Suspense"}},
		{"Fiction", []string{"Fiction"}},
		{"Fiction /", []string{"Fiction"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCategoryPath(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("splitCategoryPath(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("splitCategoryPath(%q) = %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestLoaderRejectsInvalidBook(t *testing.T) {
	loader, tx := setupLoader(t)
	ctx := context.Background()

	before := count(t, tx, &types.Book{})

	noID := &reconcile.Book{Title: "Orphan", Format: types.FormatEBook}
	badYear := sampleBook()
	badYear.ISBN13 = "9780000000927"
	badYear.GoogleBooksID = "gb-load-2"
	badYear.PublicationYear = 1203

	summary, err := loader.Load(ctx, []*reconcile.Book{noID, badYear})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if summary.BooksRejected != 2 || summary.BooksCreated != 0 {
		t.Fatalf("summary: %+v", summary)
	}
	if n := count(t, tx, &types.Book{}); n != before {
		t.Fatalf("rejected books reached the store: %d -> %d", before, n)
	}
}

func TestValidate(t *testing.T) {
	rating := 7.5
	negCount := -1
	cases := []struct {
		name string
		book *reconcile.Book
		ok   bool
	}{
		{"valid", &reconcile.Book{Title: "T", ISBN13: "9780000000934", Format: types.FormatPhysical}, true},
		{"current year", &reconcile.Book{Title: "T", ISBN13: "9780000000934", Format: types.FormatPhysical, PublicationYear: time.Now().Year()}, true},
		{"no title", &reconcile.Book{ISBN13: "9780000000934", Format: types.FormatPhysical}, false},
		{"no identifier", &reconcile.Book{Title: "T", Format: types.FormatPhysical}, false},
		{"bad format", &reconcile.Book{Title: "T", ISBN13: "9780000000934", Format: "vinyl"}, false},
		{"rating out of range", &reconcile.Book{Title: "T", ISBN13: "9780000000934", Format: types.FormatEBook, AvgRating: &rating}, false},
		{"negative ratings count", &reconcile.Book{Title: "T", ISBN13: "9780000000934", Format: types.FormatEBook, RatingsCount: &negCount}, false},
		{"next year", &reconcile.Book{Title: "T", ISBN13: "9780000000934", Format: types.FormatEBook, PublicationYear: time.Now().Year() + 1}, false},
	}
	for _, c := range cases {
		if err := validate(c.book); (err == nil) != c.ok {
			t.Fatalf("%s: validate = %v", c.name, err)
		}
	}
}
