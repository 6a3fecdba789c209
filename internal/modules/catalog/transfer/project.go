package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/data/graph"
)

// Snapshot is one full read of the relational catalog, the unit the
// projection works on.
type Snapshot struct {
	Books      []*types.Book
	Authors    []*types.Author
	Publishers []*types.Publisher
	Categories []*types.Category
	Subjects   []*types.Subject

	BookAuthors    []*types.BookAuthor
	BookPublishers []*types.BookPublisher
	BookCategories []*types.BookCategory
	BookSubjects   []*types.BookSubject
	Prices         []*types.Price
}

// Project maps a snapshot onto graph batches. It is pure so the mapping
// is testable without a driver. A link row whose endpoint is missing
// from the snapshot means the relational store and the read are out of
// step, and the projection refuses to ship a graph with dangling edges.
func Project(snap *Snapshot) ([]graph.NodeBatch, []graph.EdgeBatch, error) {
	bookIDs := make(map[uuid.UUID]bool, len(snap.Books))
	bookRows := make([]map[string]any, 0, len(snap.Books))
	for _, b := range snap.Books {
		bookIDs[b.ID] = true
		bookRows = append(bookRows, bookNode(b))
	}

	authorIDs := make(map[uuid.UUID]bool, len(snap.Authors))
	authorRows := make([]map[string]any, 0, len(snap.Authors))
	for _, a := range snap.Authors {
		authorIDs[a.ID] = true
		authorRows = append(authorRows, authorNode(a))
	}

	publisherIDs := make(map[uuid.UUID]bool, len(snap.Publishers))
	publisherRows := make([]map[string]any, 0, len(snap.Publishers))
	for _, p := range snap.Publishers {
		publisherIDs[p.ID] = true
		publisherRows = append(publisherRows, nameNode(p.ID, p.Name))
	}

	categoryIDs := make(map[uuid.UUID]bool, len(snap.Categories))
	categoryRows := make([]map[string]any, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		categoryIDs[c.ID] = true
		categoryRows = append(categoryRows, nameNode(c.ID, c.Name))
	}

	subjectIDs := make(map[uuid.UUID]bool, len(snap.Subjects))
	subjectRows := make([]map[string]any, 0, len(snap.Subjects))
	for _, s := range snap.Subjects {
		subjectIDs[s.ID] = true
		subjectRows = append(subjectRows, nameNode(s.ID, s.Name))
	}

	priceRows := make([]map[string]any, 0, len(snap.Prices))
	pricedAt := make([]map[string]any, 0, len(snap.Prices))
	for _, p := range snap.Prices {
		if !bookIDs[p.BookID] {
			return nil, nil, fmt.Errorf("price %s references missing book %s", p.ID, p.BookID)
		}
		priceRows = append(priceRows, priceNode(p))
		pricedAt = append(pricedAt, edgeRow(p.BookID, p.ID, map[string]any{"id": p.ID.String()}))
	}

	authoredBy := make([]map[string]any, 0, len(snap.BookAuthors))
	for _, row := range snap.BookAuthors {
		if !bookIDs[row.BookID] || !authorIDs[row.AuthorID] {
			return nil, nil, fmt.Errorf("book_author %s references missing endpoint", row.ID)
		}
		props := map[string]any{"id": row.ID.String()}
		if row.Role != "" {
			props["role"] = row.Role
		}
		authoredBy = append(authoredBy, edgeRow(row.BookID, row.AuthorID, props))
	}

	publishedBy := make([]map[string]any, 0, len(snap.BookPublishers))
	for _, row := range snap.BookPublishers {
		if !bookIDs[row.BookID] || !publisherIDs[row.PublisherID] {
			return nil, nil, fmt.Errorf("book_publisher %s references missing endpoint", row.ID)
		}
		publishedBy = append(publishedBy, edgeRow(row.BookID, row.PublisherID, map[string]any{"id": row.ID.String()}))
	}

	categorizedAs := make([]map[string]any, 0, len(snap.BookCategories))
	for _, row := range snap.BookCategories {
		if !bookIDs[row.BookID] || !categoryIDs[row.CategoryID] {
			return nil, nil, fmt.Errorf("book_category %s references missing endpoint", row.ID)
		}
		categorizedAs = append(categorizedAs, edgeRow(row.BookID, row.CategoryID, map[string]any{"id": row.ID.String()}))
	}

	hasSubject := make([]map[string]any, 0, len(snap.BookSubjects))
	for _, row := range snap.BookSubjects {
		if !bookIDs[row.BookID] || !subjectIDs[row.SubjectID] {
			return nil, nil, fmt.Errorf("book_subject %s references missing endpoint", row.ID)
		}
		hasSubject = append(hasSubject, edgeRow(row.BookID, row.SubjectID, map[string]any{"id": row.ID.String()}))
	}

	subcategoryOf := make([]map[string]any, 0)
	for _, c := range snap.Categories {
		if c.ParentID == nil {
			continue
		}
		if !categoryIDs[*c.ParentID] {
			return nil, nil, fmt.Errorf("category %s references missing parent %s", c.ID, *c.ParentID)
		}
		subcategoryOf = append(subcategoryOf, edgeRow(c.ID, *c.ParentID, map[string]any{"id": c.ID.String()}))
	}

	nodes := []graph.NodeBatch{
		{Label: graph.LabelBook, Rows: bookRows},
		{Label: graph.LabelAuthor, Rows: authorRows},
		{Label: graph.LabelPublisher, Rows: publisherRows},
		{Label: graph.LabelCategory, Rows: categoryRows},
		{Label: graph.LabelSubject, Rows: subjectRows},
		{Label: graph.LabelPrice, Rows: priceRows},
	}
	edges := []graph.EdgeBatch{
		{Type: graph.EdgeAuthoredBy, FromLabel: graph.LabelBook, ToLabel: graph.LabelAuthor, Rows: authoredBy},
		{Type: graph.EdgePublishedBy, FromLabel: graph.LabelBook, ToLabel: graph.LabelPublisher, Rows: publishedBy},
		{Type: graph.EdgeCategorizedAs, FromLabel: graph.LabelBook, ToLabel: graph.LabelCategory, Rows: categorizedAs},
		{Type: graph.EdgeHasSubject, FromLabel: graph.LabelBook, ToLabel: graph.LabelSubject, Rows: hasSubject},
		{Type: graph.EdgePricedAt, FromLabel: graph.LabelBook, ToLabel: graph.LabelPrice, Rows: pricedAt},
		{Type: graph.EdgeSubcategoryOf, FromLabel: graph.LabelCategory, ToLabel: graph.LabelCategory, Rows: subcategoryOf},
	}
	return nodes, edges, nil
}

func bookNode(b *types.Book) map[string]any {
	n := map[string]any{
		"id":     b.ID.String(),
		"title":  b.Title,
		"format": b.Format,
	}
	setStr(n, "isbn10", deref(b.ISBN10))
	setStr(n, "isbn13", deref(b.ISBN13))
	setStr(n, "google_books_id", deref(b.GoogleBooksID))
	setStr(n, "openlibrary_work_id", deref(b.OpenLibraryWorkID))
	setStr(n, "subtitle", b.Subtitle)
	setStr(n, "language_code", b.LanguageCode)
	setStr(n, "maturity_rating", b.MaturityRating)
	setStr(n, "cover_url", b.CoverURL)
	if b.PublicationYear != nil {
		n["publication_year"] = int64(*b.PublicationYear)
	}
	if b.PageCount != nil {
		n["page_count"] = int64(*b.PageCount)
	}
	if b.AvgRating != nil {
		n["avg_rating"] = *b.AvgRating
	}
	if b.RatingsCount != nil {
		n["ratings_count"] = int64(*b.RatingsCount)
	}

	switch b.Format {
	case types.FormatPhysical:
		setStr(n, "dimensions", b.Dimensions)
		setStr(n, "weight", b.Weight)
		setStr(n, "binding", b.Binding)
	case types.FormatEBook:
		if b.FileSizeKB != nil {
			n["file_size_kb"] = int64(*b.FileSizeKB)
		}
		if b.DRM != nil {
			n["drm"] = *b.DRM
		}
		setStr(n, "download_url", b.DownloadURL)
	case types.FormatAudio:
		if b.DurationMinutes != nil {
			n["duration_minutes"] = int64(*b.DurationMinutes)
		}
		setStr(n, "narrator", b.Narrator)
		setStr(n, "audio_format", b.AudioFormat)
	}
	return n
}

func authorNode(a *types.Author) map[string]any {
	n := map[string]any{
		"id":   a.ID.String(),
		"name": a.FullName,
	}
	setStr(n, "external_key", deref(a.ExternalKey))
	setStr(n, "personal_name", a.PersonalName)
	setStr(n, "birth_date", a.BirthDate)
	setStr(n, "death_date", a.DeathDate)
	setStr(n, "wikipedia_url", a.WikipediaURL)
	setStr(n, "website", a.Website)
	return n
}

func priceNode(p *types.Price) map[string]any {
	n := map[string]any{
		"id":      p.ID.String(),
		"country": p.Country,
	}
	setStr(n, "saleability", p.Saleability)
	setStr(n, "list_currency", p.ListCurrency)
	setStr(n, "retail_currency", p.RetailCurrency)
	setStr(n, "buy_link", p.BuyLink)
	if p.ListAmount != nil {
		n["list_amount"] = *p.ListAmount
	}
	if p.RetailAmount != nil {
		n["retail_amount"] = *p.RetailAmount
	}
	n["valid_from"] = p.ValidFrom.UTC().Format(time.RFC3339Nano)
	if p.ValidTo != nil {
		n["valid_to"] = p.ValidTo.UTC().Format(time.RFC3339Nano)
	}
	n["current"] = p.ValidTo == nil
	return n
}

func nameNode(id uuid.UUID, name string) map[string]any {
	return map[string]any{"id": id.String(), "name": name}
}

func edgeRow(from, to uuid.UUID, props map[string]any) map[string]any {
	return map[string]any{
		"from_id": from.String(),
		"to_id":   to.String(),
		"props":   props,
	}
}

func setStr(n map[string]any, key, val string) {
	if val != "" {
		n[key] = val
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
