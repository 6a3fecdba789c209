package reconcile

import (
	"sort"
	"strings"

	"github.com/vinishamanek/bookgraph/internal/modules/catalog/source"
)

// mergeClass folds one equivalence class of raw records into a canonical
// Book. The merge is lossy by policy: for descriptive fields the most
// recently fetched non-null value wins and the losers are dropped (the
// provenance rows keep the contributing record ids, not the field
// values). Rating and price fields are only taken from Google Books,
// the source that actually supplies them; subjects and author enrichment
// accumulate from every record. Author enrichment fields are first-wins,
// not latest-wins: they mirror the author store's fill-only-empty upsert,
// so a sparse later record never blanks richer biography data.
func mergeClass(items []extracted, matchedBy []string) (*Book, *RecordError) {
	refs := make([]string, 0, len(items))
	for _, ex := range items {
		refs = append(refs, ex.rec.Ref())
	}

	if err := checkStrongIDs(items); err != nil {
		return nil, &RecordError{Kind: KindIdentityAmbiguity, Refs: refs, Err: err}
	}

	ordered := make([]int, len(items))
	for i := range items {
		ordered[i] = i
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return items[ordered[a]].rec.FetchedAt.Before(items[ordered[b]].rec.FetchedAt)
	})

	book := &Book{}
	seenAuthors := map[string]int{}
	for _, idx := range ordered {
		ex := items[idx]
		rec := ex.rec

		setIfPresent(&book.ISBN10, ex.isbn10)
		setIfPresent(&book.ISBN13, ex.isbn13)
		setIfPresent(&book.Title, ex.title)
		setIfPresent(&book.Subtitle, NormalizeName(rec.Str("subtitle")))
		setIfPresent(&book.Description, rec.Str("description"))
		setIfPresent(&book.LanguageCode, rec.Str("language"))
		setIfPresent(&book.MaturityRating, rec.Str("maturity_rating"))
		setIfPresent(&book.PreviewLink, rec.Str("preview_link"))
		setIfPresent(&book.InfoLink, rec.Str("info_link"))
		setIfPresent(&book.CanonicalLink, rec.Str("canonical_link"))
		setIfPresent(&book.CoverURL, rec.Str("cover_url"))
		if ex.year != 0 {
			book.PublicationYear = ex.year
		}
		if v, ok := rec.Num("page_count"); ok && v > 0 {
			book.PageCount = int(v)
		}

		switch rec.Source {
		case source.GoogleBooks:
			setIfPresent(&book.GoogleBooksID, rec.SourceID)
			if v, ok := rec.Num("avg_rating"); ok {
				rating := v
				book.AvgRating = &rating
			}
			if v, ok := rec.Num("ratings_count"); ok {
				count := int(v)
				book.RatingsCount = &count
			}
			if obs := priceObs(rec); obs != nil {
				book.Prices = append(book.Prices, *obs)
			}
		case source.OpenLibrary:
			setIfPresent(&book.OpenLibraryWorkID, rec.Str("openlibrary_work_id"))
		}

		if ex.format != "" {
			book.Format = ex.format
		}
		setIfPresent(&book.Dimensions, rec.Str("dimensions"))
		setIfPresent(&book.Weight, rec.Str("weight"))
		setIfPresent(&book.Binding, rec.Str("binding"))
		if v, ok := rec.Num("file_size_kb"); ok {
			book.FileSizeKB = int(v)
		}
		if v, ok := rec.Bool("drm"); ok {
			drm := v
			book.DRM = &drm
		}
		setIfPresent(&book.DownloadURL, rec.Str("download_url"))
		if v, ok := rec.Num("duration_minutes"); ok {
			book.DurationMinutes = int(v)
		}
		setIfPresent(&book.Narrator, rec.Str("narrator"))
		setIfPresent(&book.AudioFormat, rec.Str("audio_format"))

		mergeAuthors(book, seenAuthors, rec)
		book.Publishers = unionStrings(book.Publishers, rec.Strs("publishers"))
		book.Categories = unionStrings(book.Categories, rec.Strs("categories"))
		book.Subjects = unionStrings(book.Subjects, rec.Strs("subjects"))

		book.Sources = append(book.Sources, SourceRef{
			Source:    rec.Source,
			SourceID:  rec.SourceID,
			MatchedBy: matchedBy[idx],
			FetchedAt: rec.FetchedAt,
			Payload:   rec.Fields,
		})
	}

	if book.Format == "" {
		return nil, &RecordError{Kind: KindClassification, Refs: refs, Err: ErrNoFormatSignal}
	}
	return book, nil
}

// checkStrongIDs rejects a class whose records disagree on an ISBN: two
// distinct non-empty ISBN-13s (or -10s) cannot describe one book, so the
// match that pulled them together is unsafe.
func checkStrongIDs(items []extracted) error {
	var i13, i10 string
	for _, ex := range items {
		if ex.isbn13 != "" {
			if i13 != "" && i13 != ex.isbn13 {
				return ErrIdentityAmbiguity
			}
			i13 = ex.isbn13
		}
		if ex.isbn10 != "" {
			if i10 != "" && i10 != ex.isbn10 {
				return ErrIdentityAmbiguity
			}
			i10 = ex.isbn10
		}
	}
	return nil
}

func mergeAuthors(book *Book, seen map[string]int, rec source.Record) {
	for _, raw := range rec.Maps("authors") {
		name, _ := raw["name"].(string)
		name = NormalizeName(name)
		if name == "" {
			continue
		}
		norm := strings.ToLower(name)
		idx, ok := seen[norm]
		if !ok {
			book.Authors = append(book.Authors, Author{Name: name})
			idx = len(book.Authors) - 1
			seen[norm] = idx
		}
		author := &book.Authors[idx]
		setIfPresentMap(&author.Key, raw, "key")
		setIfPresentMap(&author.PersonalName, raw, "personal_name")
		setIfPresentMap(&author.BirthDate, raw, "birth_date")
		setIfPresentMap(&author.DeathDate, raw, "death_date")
		setIfPresentMap(&author.Bio, raw, "bio")
		setIfPresentMap(&author.WikipediaURL, raw, "wikipedia_url")
		setIfPresentMap(&author.Website, raw, "website")
		setIfPresentMap(&author.Role, raw, "role")
	}
}

func priceObs(rec source.Record) *PriceObs {
	price := rec.Map("price")
	if len(price) == 0 {
		return nil
	}
	obs := &PriceObs{ObservedAt: rec.FetchedAt}
	if v, ok := price["country"].(string); ok {
		obs.Country = v
	}
	if obs.Country == "" {
		return nil
	}
	if v, ok := price["saleability"].(string); ok {
		obs.Saleability = v
	}
	if v, ok := price["list_amount"].(float64); ok {
		obs.ListAmount = &v
	}
	if v, ok := price["list_currency"].(string); ok {
		obs.ListCurrency = v
	}
	if v, ok := price["retail_amount"].(float64); ok {
		obs.RetailAmount = &v
	}
	if v, ok := price["retail_currency"].(string); ok {
		obs.RetailCurrency = v
	}
	if v, ok := price["buy_link"].(string); ok {
		obs.BuyLink = v
	}
	if v, ok := price["on_sale_date"].(string); ok {
		obs.OnSaleDate = ParseDate(v)
	}
	return obs
}

func setIfPresent(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

// setIfPresentMap fills only when dst is still empty, the enrichment
// counterpart to setIfPresent's overwrite.
func setIfPresentMap(dst *string, m map[string]any, key string) {
	if v, ok := m[key].(string); ok && v != "" && *dst == "" {
		*dst = v
	}
}

func unionStrings(existing []string, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range incoming {
		s = NormalizeName(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		existing = append(existing, s)
	}
	return existing
}
