package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BookSource records which raw source records contributed to a canonical
// book. The (source, source_id) unique pair is what makes re-runs of the
// loader idempotent: a record already attributed to a book is a no-op.
type BookSource struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index" json:"book_id"`
	Book   *Book     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`

	Source   string `gorm:"column:source;not null;uniqueIndex:idx_book_source,priority:1" json:"source"`
	SourceID string `gorm:"column:source_id;not null;uniqueIndex:idx_book_source,priority:2" json:"source_id"`

	// MatchedBy names the key that pulled this record into the book's
	// equivalence class (isbn13, isbn10, source_id, title_author_year).
	MatchedBy string         `gorm:"column:matched_by" json:"matched_by,omitempty"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	FetchedAt time.Time `gorm:"column:fetched_at;not null" json:"fetched_at"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (BookSource) TableName() string { return "book_source" }
