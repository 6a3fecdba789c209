package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Author struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	// FullName is stored normalized (collapsed whitespace, title case) and
	// is the natural key when no external key is known.
	FullName    string  `gorm:"column:full_name;not null;uniqueIndex:idx_author_full_name" json:"full_name"`
	ExternalKey *string `gorm:"column:external_key;uniqueIndex:idx_author_external_key" json:"external_key,omitempty"`

	PersonalName string `gorm:"column:personal_name" json:"personal_name,omitempty"`
	BirthDate    string `gorm:"column:birth_date" json:"birth_date,omitempty"`
	DeathDate    string `gorm:"column:death_date" json:"death_date,omitempty"`
	Bio          string `gorm:"column:bio;type:text" json:"bio,omitempty"`
	WikipediaURL string `gorm:"column:wikipedia_url" json:"wikipedia_url,omitempty"`
	Website      string `gorm:"column:website" json:"website,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Author) TableName() string { return "author" }
