package graph

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vinishamanek/bookgraph/internal/platform/logger"
	"github.com/vinishamanek/bookgraph/internal/platform/neo4jdb"
)

func testClient(t *testing.T) (*neo4jdb.Client, *logger.Logger) {
	t.Helper()
	uri := os.Getenv("TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("set TEST_NEO4J_URI to run graph integration tests")
	}

	user := os.Getenv("TEST_NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, os.Getenv("TEST_NEO4J_PASSWORD"), ""))
	if err != nil {
		t.Fatalf("init driver: %v", err)
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		t.Fatalf("verify connectivity: %v", err)
	}

	client := &neo4jdb.Client{Driver: driver, Database: os.Getenv("TEST_NEO4J_DATABASE")}
	t.Cleanup(func() {
		_ = client.Close(ctx)
	})

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return client, log
}

func deleteNodes(t *testing.T, client *neo4jdb.Client, ids []string) {
	t.Helper()
	ctx := context.Background()
	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n) WHERE n.id IN $ids DETACH DELETE n`, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestUpsertCatalogGraphIsIdempotent(t *testing.T) {
	client, log := testClient(t)
	ctx := context.Background()

	bookID := uuid.NewString()
	authorID := uuid.NewString()
	edgeID := uuid.NewString()
	t.Cleanup(func() { deleteNodes(t, client, []string{bookID, authorID}) })

	nodes := []NodeBatch{
		{Label: LabelBook, Rows: []map[string]any{{
			"id": bookID, "title": "Graph Roundtrip", "format": "ebook", "isbn13": "9780000000859",
		}}},
		{Label: LabelAuthor, Rows: []map[string]any{{
			"id": authorID, "name": "Round Tripper",
		}}},
	}
	edges := []EdgeBatch{
		{Type: EdgeAuthoredBy, FromLabel: LabelBook, ToLabel: LabelAuthor, Rows: []map[string]any{{
			"from_id": bookID, "to_id": authorID,
			"props": map[string]any{"id": edgeID, "role": "author"},
		}}},
	}

	before, err := NodeCounts(ctx, client, []string{LabelBook, LabelAuthor})
	if err != nil {
		t.Fatalf("NodeCounts: %v", err)
	}

	if err := UpsertCatalogGraph(ctx, client, log, nodes, edges); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	after, err := NodeCounts(ctx, client, []string{LabelBook, LabelAuthor})
	if err != nil {
		t.Fatalf("NodeCounts: %v", err)
	}
	if after[LabelBook] != before[LabelBook]+1 || after[LabelAuthor] != before[LabelAuthor]+1 {
		t.Fatalf("counts after first upsert: before=%v after=%v", before, after)
	}

	if err := UpsertCatalogGraph(ctx, client, log, nodes, edges); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	again, err := NodeCounts(ctx, client, []string{LabelBook, LabelAuthor})
	if err != nil {
		t.Fatalf("NodeCounts: %v", err)
	}
	if again[LabelBook] != after[LabelBook] || again[LabelAuthor] != after[LabelAuthor] {
		t.Fatalf("rerun changed node counts: %v -> %v", after, again)
	}
}

func TestUpsertCatalogGraphRejectsBadLabel(t *testing.T) {
	client, log := testClient(t)
	err := UpsertCatalogGraph(context.Background(), client, log, []NodeBatch{
		{Label: "Book) DETACH DELETE (n", Rows: []map[string]any{{"id": "x"}}},
	}, nil)
	if err == nil {
		t.Fatal("malformed label was accepted")
	}
}

func TestUpsertCatalogGraphNilClient(t *testing.T) {
	if err := UpsertCatalogGraph(context.Background(), nil, nil, nil, nil); err != nil {
		t.Fatalf("nil client should be a no-op: %v", err)
	}
}
