package source

import (
	"fmt"
	"time"
)

// MapOpenLibraryDoc maps one raw Open Library search doc (already
// deserialized) into a normalized Record. Open Library is the
// authoritative source for subjects and author enrichment; it has no
// rating or price data.
func MapOpenLibraryDoc(payload map[string]any, fetchedAt time.Time) (Record, error) {
	workID := str(payload, "key")
	editionID := firstStr(payload, "edition_key")
	sourceID := workID
	if sourceID == "" {
		sourceID = editionID
	}
	if sourceID == "" {
		return Record{}, fmt.Errorf("openlibrary: doc without work or edition key")
	}

	fields := map[string]any{}
	setStr(fields, "openlibrary_work_id", workID)
	setStr(fields, "openlibrary_edition_id", editionID)

	setStr(fields, "title", str(payload, "title"))
	setStr(fields, "subtitle", str(payload, "subtitle"))
	setStr(fields, "language", firstStr(payload, "language"))

	if v, ok := num(payload, "first_publish_year"); ok {
		fields["published_year"] = v
	}
	if v, ok := num(payload, "number_of_pages_median"); ok {
		fields["page_count"] = v
	}

	for _, isbn := range strsOf(payload, "isbn") {
		switch len(isbn) {
		case 10:
			if _, ok := fields["isbn_10"]; !ok {
				fields["isbn_10"] = isbn
			}
		case 13:
			if _, ok := fields["isbn_13"]; !ok {
				fields["isbn_13"] = isbn
			}
		}
	}

	names := strsOf(payload, "author_name")
	keys := strsOf(payload, "author_key")
	if len(names) > 0 {
		authors := make([]map[string]any, 0, len(names))
		for i, name := range names {
			author := map[string]any{"name": name}
			if i < len(keys) {
				author["key"] = keys[i]
			}
			authors = append(authors, author)
		}
		fields["authors"] = authors
	}

	if pubs := strsOf(payload, "publisher"); len(pubs) > 0 {
		fields["publishers"] = pubs
	}
	if subjects := strsOf(payload, "subject"); len(subjects) > 0 {
		fields["subjects"] = subjects
	}

	if v, ok := num(payload, "cover_i"); ok && v > 0 {
		fields["cover_url"] = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", int64(v))
	}

	// Format signals: print measurements mark physical editions, an
	// audiobook duration marks audio ones.
	setStr(fields, "dimensions", str(payload, "dimensions"))
	setStr(fields, "pagination", str(payload, "pagination"))
	setStr(fields, "weight", str(payload, "weight"))
	setStr(fields, "binding", str(payload, "physical_format"))
	if v, ok := num(payload, "duration_minutes"); ok {
		fields["duration_minutes"] = v
	}
	setStr(fields, "narrator", str(payload, "narrator"))

	return Record{
		Source:    OpenLibrary,
		SourceID:  sourceID,
		FetchedAt: fetchedAt,
		Fields:    fields,
	}, nil
}

func firstStr(m map[string]any, key string) string {
	vals := strsOf(m, key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
