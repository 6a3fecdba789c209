package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type AuthorRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Author, error)
	GetByFullNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Author, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Author, error)

	// UpsertByNaturalKey resolves by external key when present, otherwise
	// by normalized full name, creating the row on first sight. Enrichment
	// fields (bio, dates, links) are only written when the incoming value
	// is non-empty, so a sparse source never blanks a richer one.
	UpsertByNaturalKey(ctx context.Context, tx *gorm.DB, row *types.Author) (*types.Author, error)
}

type authorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuthorRepo(db *gorm.DB, baseLog *logger.Logger) AuthorRepo {
	return &authorRepo{db: db, log: baseLog.With("repo", "AuthorRepo")}
}

func (r *authorRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Author, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Author
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *authorRepo) GetByFullNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Author, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Author
	if len(names) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("full_name IN ?", names).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *authorRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Author, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Author
	if err := t.WithContext(ctx).Order("full_name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *authorRepo) UpsertByNaturalKey(ctx context.Context, tx *gorm.DB, row *types.Author) (*types.Author, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.FullName == "" {
		return nil, nil
	}

	var existing types.Author
	q := t.WithContext(ctx)
	if row.ExternalKey != nil && *row.ExternalKey != "" {
		q = q.Where("external_key = ? OR full_name = ?", *row.ExternalKey, row.FullName)
	} else {
		q = q.Where("full_name = ?", row.FullName)
	}
	err := q.Order("external_key NULLS LAST").First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err == gorm.ErrRecordNotFound {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if err := t.WithContext(ctx).Create(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	}

	updates := map[string]interface{}{}
	if existing.ExternalKey == nil && row.ExternalKey != nil && *row.ExternalKey != "" {
		updates["external_key"] = *row.ExternalKey
	}
	if row.PersonalName != "" && existing.PersonalName == "" {
		updates["personal_name"] = row.PersonalName
	}
	if row.BirthDate != "" && existing.BirthDate == "" {
		updates["birth_date"] = row.BirthDate
	}
	if row.DeathDate != "" && existing.DeathDate == "" {
		updates["death_date"] = row.DeathDate
	}
	if row.Bio != "" && existing.Bio == "" {
		updates["bio"] = row.Bio
	}
	if row.WikipediaURL != "" && existing.WikipediaURL == "" {
		updates["wikipedia_url"] = row.WikipediaURL
	}
	if row.Website != "" && existing.Website == "" {
		updates["website"] = row.Website
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		if err := t.WithContext(ctx).Model(&types.Author{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &existing, nil
}
