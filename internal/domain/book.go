package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book format discriminator values. Every persisted Book carries exactly
// one of these; the loader rejects rows that would violate that.
const (
	FormatPhysical = "physical"
	FormatEBook    = "ebook"
	FormatAudio    = "audio"
)

type Book struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	// At least one of the external identifiers below must be present to
	// admit a row; both ISBNs are individually optional.
	ISBN10 *string `gorm:"column:isbn10;uniqueIndex:idx_book_isbn10" json:"isbn10,omitempty"`
	ISBN13 *string `gorm:"column:isbn13;uniqueIndex:idx_book_isbn13" json:"isbn13,omitempty"`

	GoogleBooksID     *string `gorm:"column:google_books_id;uniqueIndex:idx_book_google_id" json:"google_books_id,omitempty"`
	OpenLibraryWorkID *string `gorm:"column:openlibrary_work_id;uniqueIndex:idx_book_openlibrary_id" json:"openlibrary_work_id,omitempty"`

	Title           string `gorm:"column:title;not null" json:"title"`
	Subtitle        string `gorm:"column:subtitle" json:"subtitle,omitempty"`
	Description     string `gorm:"column:description;type:text" json:"description,omitempty"`
	LanguageCode    string `gorm:"column:language_code" json:"language_code,omitempty"`
	PublicationYear *int   `gorm:"column:publication_year" json:"publication_year,omitempty"`
	PageCount       *int   `gorm:"column:page_count" json:"page_count,omitempty"`
	MaturityRating  string `gorm:"column:maturity_rating" json:"maturity_rating,omitempty"`

	AvgRating    *float64 `gorm:"column:avg_rating" json:"avg_rating,omitempty"`
	RatingsCount *int     `gorm:"column:ratings_count" json:"ratings_count,omitempty"`

	PreviewLink   string `gorm:"column:google_preview_link" json:"google_preview_link,omitempty"`
	InfoLink      string `gorm:"column:google_info_link" json:"google_info_link,omitempty"`
	CanonicalLink string `gorm:"column:google_canonical_link" json:"google_canonical_link,omitempty"`
	CoverURL      string `gorm:"column:cover_url" json:"cover_url,omitempty"`

	// Format plus the per-format column group below collapse the original
	// table-per-subtype design into a single discriminated row. Only the
	// group matching Format is populated.
	Format string `gorm:"column:format;not null;index:idx_book_format" json:"format"`

	// physical
	Dimensions string `gorm:"column:dimensions" json:"dimensions,omitempty"`
	Weight     string `gorm:"column:weight" json:"weight,omitempty"`
	Binding    string `gorm:"column:binding" json:"binding,omitempty"`

	// ebook
	FileSizeKB  *int   `gorm:"column:file_size_kb" json:"file_size_kb,omitempty"`
	DRM         *bool  `gorm:"column:drm" json:"drm,omitempty"`
	DownloadURL string `gorm:"column:download_url" json:"download_url,omitempty"`

	// audio
	DurationMinutes *int   `gorm:"column:duration_minutes" json:"duration_minutes,omitempty"`
	Narrator        string `gorm:"column:narrator" json:"narrator,omitempty"`
	AudioFormat     string `gorm:"column:audio_format" json:"audio_format,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Book) TableName() string { return "book" }
