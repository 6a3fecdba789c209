package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type BookRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Book, error)
	GetByISBN13(ctx context.Context, tx *gorm.DB, isbn13 string) (*types.Book, error)
	GetByISBN10(ctx context.Context, tx *gorm.DB, isbn10 string) (*types.Book, error)

	// FindByExternalIDs probes each non-empty identifier in confidence
	// order (isbn13, isbn10, google, openlibrary) and returns the first
	// hit, or nil when the book is unseen.
	FindByExternalIDs(ctx context.Context, tx *gorm.DB, isbn13, isbn10, googleID, openLibraryID string) (*types.Book, error)

	Create(ctx context.Context, tx *gorm.DB, row *types.Book) (*types.Book, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Book, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type bookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	return &bookRepo{db: db, log: baseLog.With("repo", "BookRepo")}
}

func (r *bookRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Book, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Book
	err := t.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *bookRepo) GetByISBN13(ctx context.Context, tx *gorm.DB, isbn13 string) (*types.Book, error) {
	return r.getByColumn(ctx, tx, "isbn13", isbn13)
}

func (r *bookRepo) GetByISBN10(ctx context.Context, tx *gorm.DB, isbn10 string) (*types.Book, error) {
	return r.getByColumn(ctx, tx, "isbn10", isbn10)
}

func (r *bookRepo) getByColumn(ctx context.Context, tx *gorm.DB, column, value string) (*types.Book, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if value == "" {
		return nil, nil
	}
	var row types.Book
	err := t.WithContext(ctx).Where(column+" = ?", value).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *bookRepo) FindByExternalIDs(ctx context.Context, tx *gorm.DB, isbn13, isbn10, googleID, openLibraryID string) (*types.Book, error) {
	probes := []struct {
		column string
		value  string
	}{
		{"isbn13", isbn13},
		{"isbn10", isbn10},
		{"google_books_id", googleID},
		{"openlibrary_work_id", openLibraryID},
	}
	for _, p := range probes {
		row, err := r.getByColumn(ctx, tx, p.column, p.value)
		if err != nil {
			return nil, err
		}
		if row != nil {
			return row, nil
		}
	}
	return nil, nil
}

func (r *bookRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Book) (*types.Book, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *bookRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(ctx).Model(&types.Book{}).Where("id = ?", id).Updates(updates).Error
}

func (r *bookRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Book, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Book
	if err := t.WithContext(ctx).Order("title ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *bookRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).Model(&types.Book{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
