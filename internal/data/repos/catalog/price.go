package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/platform/logger"
)

type PriceRepo interface {
	GetOpen(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, country string) (*types.Price, error)
	GetByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) ([]*types.Price, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Price, error)

	// Append records a new observation for (book, country). Any currently
	// open window starting earlier is closed at the new observation's
	// ValidFrom; an open window with the same ValidFrom and amounts makes
	// the call a no-op so re-runs add nothing. History is never deleted.
	Append(ctx context.Context, tx *gorm.DB, row *types.Price) (created bool, err error)
}

type priceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPriceRepo(db *gorm.DB, baseLog *logger.Logger) PriceRepo {
	return &priceRepo{db: db, log: baseLog.With("repo", "PriceRepo")}
}

func (r *priceRepo) GetOpen(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, country string) (*types.Price, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if bookID == uuid.Nil || country == "" {
		return nil, nil
	}
	var row types.Price
	err := t.WithContext(ctx).
		Where("book_id = ? AND country = ? AND valid_to IS NULL", bookID, country).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *priceRepo) GetByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) ([]*types.Price, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Price
	if bookID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("country ASC, valid_from ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *priceRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Price, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Price
	if err := t.WithContext(ctx).Order("valid_from ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *priceRepo) Append(ctx context.Context, tx *gorm.DB, row *types.Price) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.BookID == uuid.Nil || row.Country == "" {
		return false, nil
	}
	if row.ValidFrom.IsZero() {
		row.ValidFrom = time.Now().UTC()
	}

	open, err := r.GetOpen(ctx, t, row.BookID, row.Country)
	if err != nil {
		return false, err
	}

	if open != nil {
		if sameObservation(open, row) {
			return false, nil
		}
		if !row.ValidFrom.After(open.ValidFrom) {
			// Late-arriving historical fact: file it as an already-closed
			// window ending where the open one begins.
			closed := open.ValidFrom
			row.ValidTo = &closed
		} else {
			if err := t.WithContext(ctx).Model(&types.Price{}).
				Where("id = ?", open.ID).
				Updates(map[string]interface{}{
					"valid_to":   row.ValidFrom,
					"updated_at": time.Now().UTC(),
				}).Error; err != nil {
				return false, err
			}
		}
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

func sameObservation(a, b *types.Price) bool {
	if !a.ValidFrom.Equal(b.ValidFrom) {
		return false
	}
	if a.Saleability != b.Saleability {
		return false
	}
	return eqAmount(a.ListAmount, b.ListAmount) &&
		eqAmount(a.RetailAmount, b.RetailAmount) &&
		a.ListCurrency == b.ListCurrency &&
		a.RetailCurrency == b.RetailCurrency
}

func eqAmount(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
