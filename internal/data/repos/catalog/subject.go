package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type SubjectRepo interface {
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Subject, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Subject, error)
	UpsertByName(ctx context.Context, tx *gorm.DB, name string) (*types.Subject, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return &subjectRepo{db: db, log: baseLog.With("repo", "SubjectRepo")}
}

func (r *subjectRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Subject, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Subject
	if len(names) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("name IN ?", names).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subjectRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Subject, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Subject
	if err := t.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subjectRepo) UpsertByName(ctx context.Context, tx *gorm.DB, name string) (*types.Subject, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if name == "" {
		return nil, nil
	}
	var existing types.Subject
	err := t.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	row := &types.Subject{ID: uuid.New(), Name: name}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
