// Package load persists reconciled books into the relational store. Each
// book is written in its own transaction so one bad row never rolls back
// a batch, and every write path is an upsert so re-running a load over
// the same input leaves the row counts unchanged.
package load

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/data/repos/catalog"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/reconcile"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

// ErrFormatConflict means an incoming book resolved to an existing row
// with a different format. The conflict is fatal for that book: its
// transaction rolls back and the stored row is left untouched, while the
// rest of the batch keeps loading.
var ErrFormatConflict = errors.New("book format conflicts with stored row")

type Repos struct {
	Books      catalog.BookRepo
	Authors    catalog.AuthorRepo
	Publishers catalog.PublisherRepo
	Categories catalog.CategoryRepo
	Subjects   catalog.SubjectRepo
	Links      catalog.LinkRepo
	Prices     catalog.PriceRepo
	Sources    catalog.BookSourceRepo
}

type Loader struct {
	db    *gorm.DB
	repos Repos
	log   *logger.Logger
}

func New(db *gorm.DB, repos Repos, log *logger.Logger) *Loader {
	return &Loader{db: db, repos: repos, log: log.With("component", "Loader")}
}

// Summary is one load run's tally, with per-failure-kind counts.
type Summary struct {
	BooksCreated    int
	BooksUpdated    int
	BooksRejected   int
	FormatConflicts int
	PricesAppended  int
}

// Load writes each reconciled book in its own transaction. Per-book
// failures (validation, format conflict) are logged and counted without
// touching the store, and the batch keeps going; only store-level errors
// abort the run.
func (l *Loader) Load(ctx context.Context, books []*reconcile.Book) (*Summary, error) {
	summary := &Summary{}
	for _, book := range books {
		if err := validate(book); err != nil {
			l.log.Warn("book rejected", "title", book.Title, "isbn13", book.ISBN13, "error", err)
			summary.BooksRejected++
			continue
		}

		err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return l.loadOne(ctx, tx, book, summary)
		})
		if err != nil {
			if errors.Is(err, ErrFormatConflict) {
				l.log.Error("format conflict, book skipped", "title", book.Title, "isbn13", book.ISBN13, "error", err)
				summary.FormatConflicts++
				continue
			}
			return summary, fmt.Errorf("load book %q: %w", book.Title, err)
		}
	}

	l.log.Info("load complete",
		"created", summary.BooksCreated,
		"updated", summary.BooksUpdated,
		"rejected", summary.BooksRejected,
		"format_conflicts", summary.FormatConflicts,
		"prices", summary.PricesAppended)
	return summary, nil
}

func (l *Loader) loadOne(ctx context.Context, tx *gorm.DB, book *reconcile.Book, summary *Summary) error {
	existing, err := l.repos.Books.FindByExternalIDs(ctx, tx,
		book.ISBN13, book.ISBN10, book.GoogleBooksID, book.OpenLibraryWorkID)
	if err != nil {
		return err
	}

	var row *types.Book
	if existing == nil {
		row, err = l.repos.Books.Create(ctx, tx, bookRow(book))
		if err != nil {
			return err
		}
		summary.BooksCreated++
	} else {
		if existing.Format != "" && existing.Format != book.Format {
			return fmt.Errorf("%w: book %s stored as %q, incoming %q",
				ErrFormatConflict, existing.ID, existing.Format, book.Format)
		}
		if err := l.repos.Books.UpdateFields(ctx, tx, existing.ID, bookUpdates(existing, book)); err != nil {
			return err
		}
		row = existing
		summary.BooksUpdated++
	}

	if err := l.linkAuthors(ctx, tx, row.ID, book.Authors); err != nil {
		return err
	}
	if err := l.linkPublishers(ctx, tx, row.ID, book.Publishers); err != nil {
		return err
	}
	if err := l.linkCategories(ctx, tx, row.ID, book.Categories); err != nil {
		return err
	}
	if err := l.linkSubjects(ctx, tx, row.ID, book.Subjects); err != nil {
		return err
	}

	for _, obs := range book.Prices {
		created, err := l.repos.Prices.Append(ctx, tx, priceRow(row.ID, obs))
		if err != nil {
			return err
		}
		if created {
			summary.PricesAppended++
		}
	}

	return l.recordSources(ctx, tx, row.ID, book.Sources)
}

func (l *Loader) linkAuthors(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, authors []reconcile.Author) error {
	rows := make([]*types.BookAuthor, 0, len(authors))
	for _, a := range authors {
		author, err := l.repos.Authors.UpsertByNaturalKey(ctx, tx, authorRow(a))
		if err != nil {
			return err
		}
		if author == nil {
			continue
		}
		rows = append(rows, &types.BookAuthor{BookID: bookID, AuthorID: author.ID, Role: a.Role})
	}
	return l.repos.Links.LinkAuthors(ctx, tx, rows)
}

func (l *Loader) linkPublishers(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, names []string) error {
	rows := make([]*types.BookPublisher, 0, len(names))
	for _, name := range names {
		pub, err := l.repos.Publishers.UpsertByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if pub == nil {
			continue
		}
		rows = append(rows, &types.BookPublisher{BookID: bookID, PublisherID: pub.ID})
	}
	return l.repos.Links.LinkPublishers(ctx, tx, rows)
}

// linkCategories materializes the hierarchy: a slash-delimited path like
// "Fiction / Thrillers / Suspense" upserts each level with its parent
// and links the book to the leaf only.
func (l *Loader) linkCategories(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, names []string) error {
	rows := make([]*types.BookCategory, 0, len(names))
	for _, name := range names {
		var parentID *uuid.UUID
		var leaf *types.Category
		for _, part := range splitCategoryPath(name) {
			cat, err := l.repos.Categories.UpsertByName(ctx, tx, part, parentID)
			if err != nil {
				return err
			}
			if cat == nil {
				continue
			}
			id := cat.ID
			parentID = &id
			leaf = cat
		}
		if leaf == nil {
			continue
		}
		rows = append(rows, &types.BookCategory{BookID: bookID, CategoryID: leaf.ID})
	}
	return l.repos.Links.LinkCategories(ctx, tx, rows)
}

// splitCategoryPath splits a slash-delimited category path into its
// levels, root first. A plain name yields a single level.
func splitCategoryPath(name string) []string {
	parts := strings.Split(name, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (l *Loader) linkSubjects(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, names []string) error {
	rows := make([]*types.BookSubject, 0, len(names))
	for _, name := range names {
		sub, err := l.repos.Subjects.UpsertByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if sub == nil {
			continue
		}
		rows = append(rows, &types.BookSubject{BookID: bookID, SubjectID: sub.ID})
	}
	return l.repos.Links.LinkSubjects(ctx, tx, rows)
}

func (l *Loader) recordSources(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, refs []reconcile.SourceRef) error {
	rows := make([]*types.BookSource, 0, len(refs))
	for _, ref := range refs {
		var meta datatypes.JSON
		if len(ref.Payload) > 0 {
			if raw, err := json.Marshal(ref.Payload); err == nil {
				meta = datatypes.JSON(raw)
			}
		}
		rows = append(rows, &types.BookSource{
			BookID:    bookID,
			Source:    ref.Source,
			SourceID:  ref.SourceID,
			MatchedBy: ref.MatchedBy,
			Metadata:  meta,
			FetchedAt: ref.FetchedAt,
		})
	}
	return l.repos.Sources.Record(ctx, tx, rows)
}

// bookRow builds a fresh row. Only the column group matching the format
// is carried over so a row never mixes, say, a narrator with a binding.
func bookRow(b *reconcile.Book) *types.Book {
	row := &types.Book{
		ISBN10:            ptrStr(b.ISBN10),
		ISBN13:            ptrStr(b.ISBN13),
		GoogleBooksID:     ptrStr(b.GoogleBooksID),
		OpenLibraryWorkID: ptrStr(b.OpenLibraryWorkID),
		Title:             b.Title,
		Subtitle:          b.Subtitle,
		Description:       b.Description,
		LanguageCode:      b.LanguageCode,
		MaturityRating:    b.MaturityRating,
		AvgRating:         b.AvgRating,
		RatingsCount:      b.RatingsCount,
		PreviewLink:       b.PreviewLink,
		InfoLink:          b.InfoLink,
		CanonicalLink:     b.CanonicalLink,
		CoverURL:          b.CoverURL,
		Format:            b.Format,
	}
	if b.PublicationYear != 0 {
		row.PublicationYear = ptrInt(b.PublicationYear)
	}
	if b.PageCount != 0 {
		row.PageCount = ptrInt(b.PageCount)
	}

	switch b.Format {
	case types.FormatPhysical:
		row.Dimensions = b.Dimensions
		row.Weight = b.Weight
		row.Binding = b.Binding
	case types.FormatEBook:
		if b.FileSizeKB != 0 {
			row.FileSizeKB = ptrInt(b.FileSizeKB)
		}
		row.DRM = b.DRM
		row.DownloadURL = b.DownloadURL
	case types.FormatAudio:
		if b.DurationMinutes != 0 {
			row.DurationMinutes = ptrInt(b.DurationMinutes)
		}
		row.Narrator = b.Narrator
		row.AudioFormat = b.AudioFormat
	}
	return row
}

// bookUpdates is the delta applied to an existing row: identifiers are
// filled only when missing, descriptive fields are overwritten by any
// non-empty reconciled value.
func bookUpdates(existing *types.Book, b *reconcile.Book) map[string]interface{} {
	updates := map[string]interface{}{}

	fillID := func(column, val string, cur *string) {
		if val != "" && (cur == nil || *cur == "") {
			updates[column] = val
		}
	}
	fillID("isbn10", b.ISBN10, existing.ISBN10)
	fillID("isbn13", b.ISBN13, existing.ISBN13)
	fillID("google_books_id", b.GoogleBooksID, existing.GoogleBooksID)
	fillID("openlibrary_work_id", b.OpenLibraryWorkID, existing.OpenLibraryWorkID)

	setStr := func(column, val string) {
		if val != "" {
			updates[column] = val
		}
	}
	setStr("title", b.Title)
	setStr("subtitle", b.Subtitle)
	setStr("description", b.Description)
	setStr("language_code", b.LanguageCode)
	setStr("maturity_rating", b.MaturityRating)
	setStr("google_preview_link", b.PreviewLink)
	setStr("google_info_link", b.InfoLink)
	setStr("google_canonical_link", b.CanonicalLink)
	setStr("cover_url", b.CoverURL)
	if b.PublicationYear != 0 {
		updates["publication_year"] = b.PublicationYear
	}
	if b.PageCount != 0 {
		updates["page_count"] = b.PageCount
	}
	if b.AvgRating != nil {
		updates["avg_rating"] = *b.AvgRating
	}
	if b.RatingsCount != nil {
		updates["ratings_count"] = *b.RatingsCount
	}

	if existing.Format == "" {
		updates["format"] = b.Format
	}
	switch b.Format {
	case types.FormatPhysical:
		setStr("dimensions", b.Dimensions)
		setStr("weight", b.Weight)
		setStr("binding", b.Binding)
	case types.FormatEBook:
		if b.FileSizeKB != 0 {
			updates["file_size_kb"] = b.FileSizeKB
		}
		if b.DRM != nil {
			updates["drm"] = *b.DRM
		}
		setStr("download_url", b.DownloadURL)
	case types.FormatAudio:
		if b.DurationMinutes != 0 {
			updates["duration_minutes"] = b.DurationMinutes
		}
		setStr("narrator", b.Narrator)
		setStr("audio_format", b.AudioFormat)
	}
	return updates
}

func authorRow(a reconcile.Author) *types.Author {
	return &types.Author{
		FullName:     a.Name,
		ExternalKey:  ptrStr(a.Key),
		PersonalName: a.PersonalName,
		BirthDate:    a.BirthDate,
		DeathDate:    a.DeathDate,
		Bio:          a.Bio,
		WikipediaURL: a.WikipediaURL,
		Website:      a.Website,
	}
}

func priceRow(bookID uuid.UUID, obs reconcile.PriceObs) *types.Price {
	return &types.Price{
		BookID:         bookID,
		Country:        obs.Country,
		Saleability:    obs.Saleability,
		ListAmount:     obs.ListAmount,
		ListCurrency:   obs.ListCurrency,
		RetailAmount:   obs.RetailAmount,
		RetailCurrency: obs.RetailCurrency,
		BuyLink:        obs.BuyLink,
		OnSaleDate:     obs.OnSaleDate,
		ValidFrom:      obs.ObservedAt,
	}
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrInt(n int) *int {
	return &n
}
