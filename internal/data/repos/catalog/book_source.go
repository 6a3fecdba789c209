package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type BookSourceRepo interface {
	GetByBookIDs(ctx context.Context, tx *gorm.DB, bookIDs []uuid.UUID) ([]*types.BookSource, error)
	GetBySourceID(ctx context.Context, tx *gorm.DB, source, sourceID string) (*types.BookSource, error)
	Record(ctx context.Context, tx *gorm.DB, rows []*types.BookSource) error
}

type bookSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookSourceRepo(db *gorm.DB, baseLog *logger.Logger) BookSourceRepo {
	return &bookSourceRepo{db: db, log: baseLog.With("repo", "BookSourceRepo")}
}

func (r *bookSourceRepo) GetByBookIDs(ctx context.Context, tx *gorm.DB, bookIDs []uuid.UUID) ([]*types.BookSource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.BookSource
	if len(bookIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("book_id IN ?", bookIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *bookSourceRepo) GetBySourceID(ctx context.Context, tx *gorm.DB, source, sourceID string) (*types.BookSource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if source == "" || sourceID == "" {
		return nil, nil
	}
	var row types.BookSource
	err := t.WithContext(ctx).
		Where("source = ? AND source_id = ?", source, sourceID).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *bookSourceRepo) Record(ctx context.Context, tx *gorm.DB, rows []*types.BookSource) error {
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
