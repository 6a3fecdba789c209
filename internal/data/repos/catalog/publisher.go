package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type PublisherRepo interface {
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Publisher, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Publisher, error)
	UpsertByName(ctx context.Context, tx *gorm.DB, name string) (*types.Publisher, error)
}

type publisherRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPublisherRepo(db *gorm.DB, baseLog *logger.Logger) PublisherRepo {
	return &publisherRepo{db: db, log: baseLog.With("repo", "PublisherRepo")}
}

func (r *publisherRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Publisher, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Publisher
	if len(names) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("name IN ?", names).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *publisherRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Publisher, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Publisher
	if err := t.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *publisherRepo) UpsertByName(ctx context.Context, tx *gorm.DB, name string) (*types.Publisher, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if name == "" {
		return nil, nil
	}
	var existing types.Publisher
	err := t.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	row := &types.Publisher{ID: uuid.New(), Name: name}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
