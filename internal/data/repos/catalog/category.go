package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type CategoryRepo interface {
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Category, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Category, error)

	// UpsertByName creates the category on first sight; parentID is only
	// assigned when the existing row has none, so a hierarchy established
	// by one source is not rewired by a flat listing from another.
	UpsertByName(ctx context.Context, tx *gorm.DB, name string, parentID *uuid.UUID) (*types.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	if len(names) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("name IN ?", names).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	if err := t.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) UpsertByName(ctx context.Context, tx *gorm.DB, name string, parentID *uuid.UUID) (*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if name == "" {
		return nil, nil
	}
	var existing types.Category
	err := t.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err == nil {
		if existing.ParentID == nil && parentID != nil {
			if err := t.WithContext(ctx).Model(&types.Category{}).
				Where("id = ?", existing.ID).
				Update("parent_id", *parentID).Error; err != nil {
				return nil, err
			}
			existing.ParentID = parentID
		}
		return &existing, nil
	}
	row := &types.Category{ID: uuid.New(), Name: name, ParentID: parentID}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
