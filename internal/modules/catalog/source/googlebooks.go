package source

import (
	"fmt"
	"strings"
	"time"
)

// MapGoogleBooksVolume maps one raw Google Books volume payload (the
// "items" element shape of the volumes API, already deserialized) into a
// normalized Record. Google Books is the authoritative source for rating
// and price fields.
func MapGoogleBooksVolume(payload map[string]any, fetchedAt time.Time) (Record, error) {
	id := str(payload, "id")
	if id == "" {
		return Record{}, fmt.Errorf("googlebooks: payload without volume id")
	}

	volume := sub(payload, "volumeInfo")
	sale := sub(payload, "saleInfo")
	access := sub(payload, "accessInfo")

	fields := map[string]any{
		"google_books_id": id,
	}

	setStr(fields, "title", str(volume, "title"))
	setStr(fields, "subtitle", str(volume, "subtitle"))
	setStr(fields, "description", str(volume, "description"))
	setStr(fields, "language", str(volume, "language"))
	setStr(fields, "published_date", str(volume, "publishedDate"))
	setStr(fields, "maturity_rating", str(volume, "maturityRating"))
	setStr(fields, "preview_link", str(volume, "previewLink"))
	setStr(fields, "info_link", str(volume, "infoLink"))
	setStr(fields, "canonical_link", str(volume, "canonicalVolumeLink"))

	if v, ok := num(volume, "pageCount"); ok {
		fields["page_count"] = v
	}
	if v, ok := num(volume, "averageRating"); ok {
		fields["avg_rating"] = v
	}
	if v, ok := num(volume, "ratingsCount"); ok {
		fields["ratings_count"] = v
	}

	for _, ident := range maps(volume, "industryIdentifiers") {
		switch str(ident, "type") {
		case "ISBN_10":
			setStr(fields, "isbn_10", str(ident, "identifier"))
		case "ISBN_13":
			setStr(fields, "isbn_13", str(ident, "identifier"))
		}
	}

	if names := strsOf(volume, "authors"); len(names) > 0 {
		authors := make([]map[string]any, 0, len(names))
		for _, name := range names {
			authors = append(authors, map[string]any{"name": name})
		}
		fields["authors"] = authors
	}
	if pub := str(volume, "publisher"); pub != "" {
		fields["publishers"] = []string{pub}
	}
	if cats := strsOf(volume, "categories"); len(cats) > 0 {
		fields["categories"] = cats
	}

	// Format signals. saleInfo.isEbook is explicit either way; dimensions
	// only exist on print volumes.
	if v, ok := sale["isEbook"].(bool); ok {
		fields["is_ebook"] = v
	}
	if dims := sub(volume, "dimensions"); len(dims) > 0 {
		parts := make([]string, 0, 3)
		for _, k := range []string{"height", "width", "thickness"} {
			if s := str(dims, k); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			fields["dimensions"] = strings.Join(parts, " x ")
		}
	}
	if epub := sub(access, "epub"); len(epub) > 0 {
		if avail, ok := epub["isAvailable"].(bool); ok && avail {
			fields["is_ebook"] = true
			setStr(fields, "download_url", str(epub, "acsTokenLink"))
		}
	}

	if price := mapGoogleBooksPrice(sale); price != nil {
		fields["price"] = price
	}

	return Record{
		Source:    GoogleBooks,
		SourceID:  id,
		FetchedAt: fetchedAt,
		Fields:    fields,
	}, nil
}

func mapGoogleBooksPrice(sale map[string]any) map[string]any {
	if len(sale) == 0 {
		return nil
	}
	list := sub(sale, "listPrice")
	retail := sub(sale, "retailPrice")
	if len(list) == 0 && len(retail) == 0 {
		return nil
	}
	price := map[string]any{}
	setStr(price, "country", str(sale, "country"))
	setStr(price, "saleability", str(sale, "saleability"))
	setStr(price, "buy_link", str(sale, "buyLink"))
	setStr(price, "on_sale_date", str(sale, "onSaleDate"))
	if v, ok := num(list, "amount"); ok {
		price["list_amount"] = v
		setStr(price, "list_currency", str(list, "currencyCode"))
	}
	if v, ok := num(retail, "amount"); ok {
		price["retail_amount"] = v
		setStr(price, "retail_currency", str(retail, "currencyCode"))
	}
	return price
}

func sub(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func num(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func maps(m map[string]any, key string) []map[string]any {
	items, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if mm, ok := item.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}

func strsOf(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func setStr(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}
