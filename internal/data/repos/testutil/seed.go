package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
)

func SeedBook(tb testing.TB, ctx context.Context, tx *gorm.DB, isbn13 string, format string) *types.Book {
	tb.Helper()
	b := &types.Book{
		ID:     uuid.New(),
		ISBN13: PtrStr(isbn13),
		Title:  "Seed Book " + isbn13,
		Format: format,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed book: %v", err)
	}
	return b
}

func SeedAuthor(tb testing.TB, ctx context.Context, tx *gorm.DB, fullName string) *types.Author {
	tb.Helper()
	a := &types.Author{
		ID:       uuid.New(),
		FullName: fullName,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed author: %v", err)
	}
	return a
}

func SeedPublisher(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Publisher {
	tb.Helper()
	p := &types.Publisher{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed publisher: %v", err)
	}
	return p
}

func PtrStr(v string) *string { return &v }

func PtrInt(v int) *int { return &v }

func PtrFloat(v float64) *float64 { return &v }

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
