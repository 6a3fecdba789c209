package reconcile

import (
	"time"

	"github.com/vinishamanek/bookgraph/internal/modules/catalog/source"
)

// Book is one reconciled logical book with everything it references.
// The reconciler owns these values; persisted identity (uuids) is
// assigned later by the loader.
type Book struct {
	ISBN10            string
	ISBN13            string
	GoogleBooksID     string
	OpenLibraryWorkID string

	Title           string
	Subtitle        string
	Description     string
	LanguageCode    string
	PublicationYear int
	PageCount       int
	MaturityRating  string

	AvgRating    *float64
	RatingsCount *int

	PreviewLink   string
	InfoLink      string
	CanonicalLink string
	CoverURL      string

	Format string

	Dimensions string
	Weight     string
	Binding    string

	FileSizeKB  int
	DRM         *bool
	DownloadURL string

	DurationMinutes int
	Narrator        string
	AudioFormat     string

	Authors    []Author
	Publishers []string
	Categories []string
	Subjects   []string
	Prices     []PriceObs
	Sources    []SourceRef
}

type Author struct {
	Name         string
	Key          string
	PersonalName string
	BirthDate    string
	DeathDate    string
	Bio          string
	WikipediaURL string
	Website      string
	Role         string
}

type PriceObs struct {
	Country        string
	Saleability    string
	ListAmount     *float64
	ListCurrency   string
	RetailAmount   *float64
	RetailCurrency string
	BuyLink        string
	OnSaleDate     *time.Time
	ObservedAt     time.Time
}

// SourceRef is one provenance entry: which raw record contributed and on
// which key it was pulled into the equivalence class. Payload carries the
// record's normalized fields so the loader can file them alongside the
// attribution row.
type SourceRef struct {
	Source    string
	SourceID  string
	MatchedBy string
	FetchedAt time.Time
	Payload   map[string]any
}

// extracted is the per-record normalized view the dedup index and the
// merge stage work on.
type extracted struct {
	rec source.Record

	isbn10   string
	isbn13   string
	matchI13 string // isbn13 for matching, derived from isbn10 when absent

	title     string
	normTitle string
	surname   string
	year      int

	format string // "" when the record carries no signal
}

func extract(rec source.Record) extracted {
	ex := extracted{rec: rec}

	ex.isbn10 = NormalizeISBN(rec.Str("isbn_10"))
	ex.isbn13 = NormalizeISBN(rec.Str("isbn_13"))
	ex.matchI13 = ex.isbn13
	if ex.matchI13 == "" && ex.isbn10 != "" {
		ex.matchI13 = ISBN10To13(ex.isbn10)
	}

	ex.title = NormalizeName(rec.Str("title"))
	ex.normTitle = NormalizeTitle(ex.title)
	if authors := rec.Maps("authors"); len(authors) > 0 {
		if name, ok := authors[0]["name"].(string); ok {
			ex.surname = Surname(NormalizeName(name))
		}
	}

	if y, ok := rec.Num("published_year"); ok {
		ex.year = int(y)
	} else {
		ex.year = ParseYear(rec.Str("published_date"))
	}

	ex.format = classify(rec)
	return ex
}
