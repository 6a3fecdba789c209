package reconcile

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// NormalizeISBN strips separators and uppercases the check digit. Returns
// "" when what remains is not a plausible ISBN-10 or ISBN-13.
func NormalizeISBN(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		case r == '-' || r == ' ':
		default:
			return ""
		}
	}
	s := b.String()
	switch len(s) {
	case 10:
		return s
	case 13:
		if strings.ContainsRune(s, 'X') {
			return ""
		}
		return s
	default:
		return ""
	}
}

// ISBN10To13 converts a normalized ISBN-10 to its 978-prefixed ISBN-13,
// recomputing the check digit. Used for matching only; the source-supplied
// ISBN-13 is what gets persisted when present.
func ISBN10To13(isbn10 string) string {
	if len(isbn10) != 10 {
		return ""
	}
	core := "978" + isbn10[:9]
	sum := 0
	for i, r := range core {
		d := int(r - '0')
		if d < 0 || d > 9 {
			return ""
		}
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return core + strconv.Itoa(check)
}

// NormalizeTitle lowercases, drops punctuation and collapses whitespace,
// producing the fuzzy-match form of a title.
func NormalizeTitle(raw string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == ':':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeName collapses whitespace without changing case; author and
// publisher names keep their source casing as display values.
func NormalizeName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Surname returns the last whitespace-separated token of a name,
// lowercased, for the fuzzy (title, surname, year) matching triple.
func Surname(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimRight(fields[len(fields)-1], ".,"))
}

// ParseYear extracts a publication year from the date shapes the sources
// emit: a bare year, YYYY-MM or YYYY-MM-DD. Returns 0 when unparseable.
func ParseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if i := strings.IndexAny(raw, "-/"); i > 0 {
		raw = raw[:i]
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return year
}

// ParseDate accepts the date layouts seen across both catalogs.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01", "2006", "January 2, 2006", "2 January 2006"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}
