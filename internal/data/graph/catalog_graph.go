// Package graph owns the Neo4j side of the catalog: label constraints
// and the MERGE-based batch upserts the transfer engine feeds. Node and
// edge identity in the graph is the relational uuid, which is what makes
// re-projection idempotent.
package graph

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vinishamanek/bookgraph/internal/platform/logger"
	"github.com/vinishamanek/bookgraph/internal/platform/neo4jdb"
)

// Node labels of the catalog projection.
const (
	LabelBook      = "Book"
	LabelAuthor    = "Author"
	LabelPublisher = "Publisher"
	LabelCategory  = "Category"
	LabelSubject   = "Subject"
	LabelPrice     = "Price"
)

// Relationship types. Prices hang off books as satellite nodes rather
// than properties so price history stays traversable.
const (
	EdgeAuthoredBy    = "AUTHORED_BY"
	EdgePublishedBy   = "PUBLISHED_BY"
	EdgeCategorizedAs = "CATEGORIZED_AS"
	EdgeHasSubject    = "HAS_SUBJECT"
	EdgePricedAt      = "PRICED_AT"
	EdgeSubcategoryOf = "SUBCATEGORY_OF"
)

// Labels and types are spliced into Cypher text (they cannot be bound as
// parameters), so anything not matching this shape is rejected outright.
var identRe = regexp.MustCompile(`^[A-Za-z_]+$`)

// NodeBatch is one label's worth of node upserts. Every row must carry
// an "id" property; the remaining properties replace whatever the node
// had for those keys.
type NodeBatch struct {
	Label string
	Rows  []map[string]any
}

// EdgeBatch is one relationship type's worth of edge upserts. Rows carry
// "from_id", "to_id" and a "props" map merged onto the relationship.
type EdgeBatch struct {
	Type      string
	FromLabel string
	ToLabel   string
	Rows      []map[string]any
}

// UpsertCatalogGraph projects one relational snapshot into the graph.
// Schema setup is best-effort (restricted users may not hold the
// privilege); the data write runs in a single managed transaction.
func UpsertCatalogGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, nodes []NodeBatch, edges []EdgeBatch) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for _, batch := range nodes {
		if !identRe.MatchString(batch.Label) {
			return fmt.Errorf("neo4j catalog sync: bad label %q", batch.Label)
		}
	}
	for _, batch := range edges {
		if !identRe.MatchString(batch.Type) || !identRe.MatchString(batch.FromLabel) || !identRe.MatchString(batch.ToLabel) {
			return fmt.Errorf("neo4j catalog sync: bad edge type %q (%s -> %s)", batch.Type, batch.FromLabel, batch.ToLabel)
		}
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	ensureSchema(ctx, session, log, nodes)

	syncedAt := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, batch := range nodes {
			if len(batch.Rows) == 0 {
				continue
			}
			query := fmt.Sprintf(`
UNWIND $rows AS n
MERGE (x:%s {id: n.id})
SET x += n, x.synced_at = $synced_at
`, batch.Label)
			res, err := tx.Run(ctx, query, map[string]any{"rows": batch.Rows, "synced_at": syncedAt})
			if err != nil {
				return nil, fmt.Errorf("upsert %s nodes: %w", batch.Label, err)
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		for _, batch := range edges {
			if len(batch.Rows) == 0 {
				continue
			}
			query := fmt.Sprintf(`
UNWIND $rows AS r
MATCH (a:%s {id: r.from_id})
MATCH (b:%s {id: r.to_id})
MERGE (a)-[e:%s]->(b)
SET e += r.props, e.synced_at = $synced_at
`, batch.FromLabel, batch.ToLabel, batch.Type)
			res, err := tx.Run(ctx, query, map[string]any{"rows": batch.Rows, "synced_at": syncedAt})
			if err != nil {
				return nil, fmt.Errorf("upsert %s edges: %w", batch.Type, err)
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func ensureSchema(ctx context.Context, session neo4j.SessionWithContext, log *logger.Logger, nodes []NodeBatch) {
	stmts := make([]string, 0, len(nodes)+2)
	seen := map[string]bool{}
	for _, batch := range nodes {
		if seen[batch.Label] {
			continue
		}
		seen[batch.Label] = true
		stmts = append(stmts, fmt.Sprintf(
			`CREATE CONSTRAINT %s_id_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE`,
			lowerIdent(batch.Label), batch.Label))
	}
	if seen[LabelBook] {
		stmts = append(stmts,
			`CREATE INDEX book_isbn13_idx IF NOT EXISTS FOR (n:Book) ON (n.isbn13)`,
			`CREATE INDEX book_format_idx IF NOT EXISTS FOR (n:Book) ON (n.format)`)
	}
	for _, stmt := range stmts {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

// NodeCounts reads per-label node totals, used for post-transfer checks.
func NodeCounts(ctx context.Context, client *neo4jdb.Client, labels []string) (map[string]int64, error) {
	if client == nil || client.Driver == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	out := make(map[string]int64, len(labels))
	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, label := range labels {
			if !identRe.MatchString(label) {
				return nil, fmt.Errorf("neo4j catalog counts: bad label %q", label)
			}
			res, err := tx.Run(ctx, fmt.Sprintf(`MATCH (n:%s) RETURN count(n) AS c`, label), nil)
			if err != nil {
				return nil, err
			}
			rec, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			if c, ok := rec.Get("c"); ok {
				if n, ok := c.(int64); ok {
					out[label] = n
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lowerIdent(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
