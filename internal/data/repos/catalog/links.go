package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

// LinkRepo covers the four Book association tables. Every Link* call is
// idempotent via ON CONFLICT DO NOTHING on the composite unique index.
type LinkRepo interface {
	LinkAuthors(ctx context.Context, tx *gorm.DB, rows []*types.BookAuthor) error
	LinkPublishers(ctx context.Context, tx *gorm.DB, rows []*types.BookPublisher) error
	LinkCategories(ctx context.Context, tx *gorm.DB, rows []*types.BookCategory) error
	LinkSubjects(ctx context.Context, tx *gorm.DB, rows []*types.BookSubject) error

	GetAllBookAuthors(ctx context.Context, tx *gorm.DB) ([]*types.BookAuthor, error)
	GetAllBookPublishers(ctx context.Context, tx *gorm.DB) ([]*types.BookPublisher, error)
	GetAllBookCategories(ctx context.Context, tx *gorm.DB) ([]*types.BookCategory, error)
	GetAllBookSubjects(ctx context.Context, tx *gorm.DB) ([]*types.BookSubject, error)

	CountBookAuthors(ctx context.Context, tx *gorm.DB) (int64, error)
}

type linkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLinkRepo(db *gorm.DB, baseLog *logger.Logger) LinkRepo {
	return &linkRepo{db: db, log: baseLog.With("repo", "LinkRepo")}
}

func (r *linkRepo) LinkAuthors(ctx context.Context, tx *gorm.DB, rows []*types.BookAuthor) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *linkRepo) LinkPublishers(ctx context.Context, tx *gorm.DB, rows []*types.BookPublisher) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *linkRepo) LinkCategories(ctx context.Context, tx *gorm.DB, rows []*types.BookCategory) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *linkRepo) LinkSubjects(ctx context.Context, tx *gorm.DB, rows []*types.BookSubject) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *linkRepo) GetAllBookAuthors(ctx context.Context, tx *gorm.DB) ([]*types.BookAuthor, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.BookAuthor
	if err := t.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *linkRepo) GetAllBookPublishers(ctx context.Context, tx *gorm.DB) ([]*types.BookPublisher, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.BookPublisher
	if err := t.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *linkRepo) GetAllBookCategories(ctx context.Context, tx *gorm.DB) ([]*types.BookCategory, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.BookCategory
	if err := t.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *linkRepo) GetAllBookSubjects(ctx context.Context, tx *gorm.DB) ([]*types.BookSubject, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.BookSubject
	if err := t.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *linkRepo) CountBookAuthors(ctx context.Context, tx *gorm.DB) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).Model(&types.BookAuthor{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
