package reconcile

import "fmt"

// Match key kinds, strongest first. The kind a record matched on is kept
// as provenance (BookSource.matched_by).
const (
	matchISBN13   = "isbn13"
	matchISBN10   = "isbn10"
	matchSourceID = "source_id"
	matchTriple   = "title_author_year"
	matchNone     = "new"
)

// dedupIndex is a union-find over record indexes. Two records land in the
// same equivalence class when they share any match key; the class is the
// set of raw records describing one logical book. Mutation is not
// goroutine-safe: the index is the pipeline's single-writer stage.
type dedupIndex struct {
	parent    []int
	rank      []int
	byKey     map[string]int
	matchedBy []string
}

func newDedupIndex() *dedupIndex {
	return &dedupIndex{byKey: make(map[string]int)}
}

// add registers record i under its match keys and unions it with any
// record already holding one of them. Returns the kind of the first key
// that produced a match, or matchNone for a fresh class.
func (d *dedupIndex) add(i int, ex extracted) string {
	for len(d.parent) <= i {
		d.parent = append(d.parent, len(d.parent))
		d.rank = append(d.rank, 0)
		d.matchedBy = append(d.matchedBy, matchNone)
	}

	matched := matchNone
	for _, mk := range matchKeys(ex) {
		if j, ok := d.byKey[mk.key]; ok {
			d.union(i, j)
			if matched == matchNone {
				matched = mk.kind
			}
		} else {
			d.byKey[mk.key] = i
		}
	}
	d.matchedBy[i] = matched
	return matched
}

type matchKey struct {
	kind string
	key  string
}

func matchKeys(ex extracted) []matchKey {
	var keys []matchKey
	if ex.matchI13 != "" {
		keys = append(keys, matchKey{matchISBN13, "i13:" + ex.matchI13})
	}
	if ex.isbn10 != "" {
		keys = append(keys, matchKey{matchISBN10, "i10:" + ex.isbn10})
	}
	if ex.rec.SourceID != "" {
		keys = append(keys, matchKey{matchSourceID, "src:" + ex.rec.Ref()})
	}
	if ex.normTitle != "" && ex.surname != "" && ex.year != 0 {
		keys = append(keys, matchKey{matchTriple, fmt.Sprintf("tay:%s|%s|%d", ex.normTitle, ex.surname, ex.year)})
	}
	return keys
}

func (d *dedupIndex) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

func (d *dedupIndex) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
}

// classes groups record indexes by their root, preserving input order
// within each class so the merge stage sees records oldest-key-first.
func (d *dedupIndex) classes() [][]int {
	order := make([]int, 0)
	byRoot := make(map[int][]int)
	for i := range d.parent {
		root := d.find(i)
		if _, ok := byRoot[root]; !ok {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], i)
	}
	out := make([][]int, 0, len(order))
	for _, root := range order {
		out = append(out, byRoot[root])
	}
	return out
}
