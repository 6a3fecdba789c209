package reconcile

import (
	"context"
	"testing"
	"time"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/source"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func googleRec(id string, fetched time.Time, fields map[string]any) source.Record {
	return source.Record{Source: source.GoogleBooks, SourceID: id, FetchedAt: fetched, Fields: fields}
}

func openLibRec(id string, fetched time.Time, fields map[string]any) source.Record {
	return source.Record{Source: source.OpenLibrary, SourceID: id, FetchedAt: fetched, Fields: fields}
}

func TestReconcileMergesAcrossSourcesByISBN13(t *testing.T) {
	earlier := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	records := []source.Record{
		openLibRec("/works/OL1W", earlier, map[string]any{
			"isbn_13":             "9780000000002",
			"title":               "the go programming language",
			"openlibrary_work_id": "/works/OL1W",
			"subjects":            []string{"Computers", "Go (programming language)"},
			"pagination":          "xii, 380 p.",
			"authors":             []any{map[string]any{"name": "Alan Donovan", "key": "OL100A"}},
		}),
		googleRec("gb-1", later, map[string]any{
			"isbn_13":         "9780000000002",
			"title":           "The Go Programming Language",
			"google_books_id": "gb-1",
			"avg_rating":      4.5,
			"ratings_count":   300.0,
			"is_ebook":        false,
			"authors":         []any{map[string]any{"name": "Alan Donovan"}},
			"publishers":      []string{"Addison-Wesley"},
			"categories":      []string{"Computers"},
		}),
	}

	result, err := New(testLogger(t), 2).Reconcile(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Books) != 1 {
		t.Fatalf("expected exactly one canonical book, got %d", len(result.Books))
	}

	book := result.Books[0]
	if book.ISBN13 != "9780000000002" {
		t.Fatalf("isbn13: %q", book.ISBN13)
	}
	// The most recently fetched record wins the title conflict.
	if book.Title != "The Go Programming Language" {
		t.Fatalf("title: %q", book.Title)
	}
	if book.GoogleBooksID != "gb-1" || book.OpenLibraryWorkID != "/works/OL1W" {
		t.Fatalf("external ids not merged: %+v", book)
	}
	if book.AvgRating == nil || *book.AvgRating != 4.5 {
		t.Fatalf("rating not taken from google books: %+v", book.AvgRating)
	}
	if len(book.Authors) != 1 {
		t.Fatalf("authors not deduplicated: %v", book.Authors)
	}
	if book.Authors[0].Key != "OL100A" {
		t.Fatalf("author enrichment lost: %+v", book.Authors[0])
	}
	if len(book.Subjects) != 2 || len(book.Categories) != 1 {
		t.Fatalf("taxonomies: subjects=%v categories=%v", book.Subjects, book.Categories)
	}
	// Physical pagination signal from Open Library; Google's explicit
	// is_ebook=false agrees.
	if book.Format != types.FormatPhysical {
		t.Fatalf("format: %q", book.Format)
	}
	if len(book.Sources) != 2 {
		t.Fatalf("provenance: %v", book.Sources)
	}
	for _, ref := range book.Sources {
		if ref.MatchedBy == "" {
			t.Fatalf("provenance missing match reason: %+v", ref)
		}
	}
}

func TestReconcileMatchesISBN10AgainstISBN13(t *testing.T) {
	now := time.Now().UTC()
	records := []source.Record{
		googleRec("gb-a", now, map[string]any{
			"isbn_10":  "055380457X",
			"title":    "The Google Story",
			"is_ebook": true,
		}),
		openLibRec("/works/OL2W", now.Add(time.Minute), map[string]any{
			"isbn_13":    "9780553804577",
			"title":      "The Google Story",
			"pagination": "333 p.",
		}),
	}

	result, err := New(testLogger(t), 1).Reconcile(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Books) != 1 {
		t.Fatalf("isbn10/isbn13 pair did not merge: %d books", len(result.Books))
	}
	book := result.Books[0]
	if book.ISBN10 != "055380457X" || book.ISBN13 != "9780553804577" {
		t.Fatalf("identifiers: %+v", book)
	}
}

func TestReconcileClassifiesAudioByDuration(t *testing.T) {
	records := []source.Record{
		openLibRec("/works/OL3W", time.Now().UTC(), map[string]any{
			"isbn_13":          "9780000000064",
			"title":            "Project Hail Mary",
			"duration_minutes": 960.0,
			"narrator":         "Ray Porter",
		}),
	}
	result, err := New(testLogger(t), 1).Reconcile(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Books) != 1 || result.Books[0].Format != types.FormatAudio {
		t.Fatalf("expected audio classification: %+v", result.Books)
	}
	if result.Books[0].DurationMinutes != 960 || result.Books[0].Narrator != "Ray Porter" {
		t.Fatalf("audio detail lost: %+v", result.Books[0])
	}
}

func TestReconcileRejectsRecordWithoutFormatSignal(t *testing.T) {
	records := []source.Record{
		googleRec("gb-x", time.Now().UTC(), map[string]any{
			"isbn_13": "9780000000071",
			"title":   "Formless",
		}),
	}
	result, err := New(testLogger(t), 1).Reconcile(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Books) != 0 {
		t.Fatalf("book without format signal was not rejected: %+v", result.Books)
	}
	if len(result.Errors) != 1 || result.Errors[0].Kind != KindClassification {
		t.Fatalf("expected one classification error: %v", result.Errors)
	}
	if result.Kinds[KindClassification] != 1 {
		t.Fatalf("classification not tallied: %v", result.Kinds)
	}
}

func TestReconcileSurfacesConflictingStrongIdentifiers(t *testing.T) {
	now := time.Now().UTC()
	// Same (title, surname, year) triple, different ISBN-13s: the fuzzy
	// match pulls them together, the strong ids refuse the merge.
	records := []source.Record{
		googleRec("gb-c1", now, map[string]any{
			"isbn_13":        "9780000000101",
			"title":          "Ambiguous Editions",
			"published_date": "2001",
			"is_ebook":       true,
			"authors":        []any{map[string]any{"name": "Pat Writer"}},
		}),
		openLibRec("/works/OL4W", now, map[string]any{
			"isbn_13":        "9780000000118",
			"title":          "Ambiguous Editions",
			"published_year": 2001.0,
			"pagination":     "200 p.",
			"authors":        []any{map[string]any{"name": "Pat Writer"}},
		}),
	}
	result, err := New(testLogger(t), 1).Reconcile(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Books) != 0 {
		t.Fatalf("conflicting identifiers merged silently: %+v", result.Books)
	}
	if len(result.Errors) != 1 || result.Errors[0].Kind != KindIdentityAmbiguity {
		t.Fatalf("expected identity ambiguity: %v", result.Errors)
	}
	if len(result.Errors[0].Refs) != 2 {
		t.Fatalf("ambiguity must name both records: %v", result.Errors[0].Refs)
	}
	if result.Kinds[KindIdentityAmbiguity] != 1 {
		t.Fatalf("ambiguity not tallied: %v", result.Kinds)
	}
}

func TestReconcileAuthorEnrichmentIsFirstWins(t *testing.T) {
	earlier := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	records := []source.Record{
		openLibRec("/works/OL5W", earlier, map[string]any{
			"isbn_13":    "9780000000163",
			"title":      "Enriched Author",
			"pagination": "100 p.",
			"authors": []any{map[string]any{
				"name":       "Iris Writer",
				"key":        "OL500A",
				"birth_date": "1950",
				"bio":        "The richer biography.",
			}},
		}),
		openLibRec("/editions/OL6M", later, map[string]any{
			"isbn_13":    "9780000000163",
			"title":      "Enriched Author",
			"pagination": "100 p.",
			"authors": []any{map[string]any{
				"name":       "Iris Writer",
				"birth_date": "1951",
			}},
		}),
	}

	result, err := New(testLogger(t), 1).Reconcile(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Books) != 1 || len(result.Books[0].Authors) != 1 {
		t.Fatalf("merge shape: %+v", result.Books)
	}
	author := result.Books[0].Authors[0]
	// Enrichment mirrors the store's fill-only-empty upsert: the first
	// observed value sticks, a later sparser record cannot replace it.
	if author.BirthDate != "1950" {
		t.Fatalf("later record overwrote enrichment: %+v", author)
	}
	if author.Key != "OL500A" || author.Bio != "The richer biography." {
		t.Fatalf("enrichment lost: %+v", author)
	}
}

func TestReconcilePriceObservations(t *testing.T) {
	fetched := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []source.Record{
		googleRec("gb-p", fetched, map[string]any{
			"isbn_13":  "9780000000125",
			"title":    "Priced Work",
			"is_ebook": true,
			"price": map[string]any{
				"country":       "US",
				"saleability":   "FOR_SALE",
				"list_amount":   11.99,
				"list_currency": "USD",
			},
		}),
	}
	result, err := New(testLogger(t), 1).Reconcile(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Books) != 1 || len(result.Books[0].Prices) != 1 {
		t.Fatalf("price observation lost: %+v", result.Books)
	}
	obs := result.Books[0].Prices[0]
	if obs.Country != "US" || obs.ListAmount == nil || *obs.ListAmount != 11.99 || !obs.ObservedAt.Equal(fetched) {
		t.Fatalf("price observation: %+v", obs)
	}
}

func TestReconcileKeepsUnrelatedBooksApart(t *testing.T) {
	now := time.Now().UTC()
	records := []source.Record{
		googleRec("gb-1", now, map[string]any{"isbn_13": "9780000000149", "title": "Alpha", "is_ebook": true}),
		googleRec("gb-2", now, map[string]any{"isbn_13": "9780000000156", "title": "Beta", "is_ebook": true}),
	}
	result, err := New(testLogger(t), 2).Reconcile(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Books) != 2 {
		t.Fatalf("unrelated books merged: %d", len(result.Books))
	}
}
