package domain

import (
	"time"

	"github.com/google/uuid"
)

// Association rows. Each maps one-to-one onto a directed edge in the
// graph projection, so they carry their own uuid for traceability.

type BookAuthor struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_book_author,priority:1" json:"book_id"`
	Book     *Book     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_book_author,priority:2;index" json:"author_id"`
	Author   *Author   `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Role     string    `gorm:"column:role" json:"role,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (BookAuthor) TableName() string { return "book_author" }

type BookPublisher struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_book_publisher,priority:1" json:"book_id"`
	Book        *Book      `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`
	PublisherID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_book_publisher,priority:2;index" json:"publisher_id"`
	Publisher   *Publisher `gorm:"constraint:OnDelete:CASCADE;foreignKey:PublisherID;references:ID" json:"publisher,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (BookPublisher) TableName() string { return "book_publisher" }

type BookCategory struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_book_category,priority:1" json:"book_id"`
	Book       *Book     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_book_category,priority:2;index" json:"category_id"`
	Category   *Category `gorm:"constraint:OnDelete:CASCADE;foreignKey:CategoryID;references:ID" json:"category,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (BookCategory) TableName() string { return "book_category" }

type BookSubject struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_book_subject,priority:1" json:"book_id"`
	Book      *Book     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_book_subject,priority:2;index" json:"subject_id"`
	Subject   *Subject  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (BookSubject) TableName() string { return "book_subject" }
