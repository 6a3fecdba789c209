package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Price is an append-only fact: one row per observation of a book's price
// in a country. ValidTo == nil marks the current observation; superseding
// a current row closes its window instead of deleting it. The at-most-one
// open window per (book, country) invariant is held by the price repo.
type Price struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index:idx_price_book_country,priority:1" json:"book_id"`
	Book   *Book     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID" json:"book,omitempty"`

	Country     string `gorm:"column:country;not null;index:idx_price_book_country,priority:2" json:"country"`
	Saleability string `gorm:"column:saleability" json:"saleability,omitempty"`

	ListAmount     *float64 `gorm:"column:list_amount" json:"list_amount,omitempty"`
	ListCurrency   string   `gorm:"column:list_currency" json:"list_currency,omitempty"`
	RetailAmount   *float64 `gorm:"column:retail_amount" json:"retail_amount,omitempty"`
	RetailCurrency string   `gorm:"column:retail_currency" json:"retail_currency,omitempty"`
	BuyLink        string   `gorm:"column:buy_link" json:"buy_link,omitempty"`

	OnSaleDate *time.Time `gorm:"column:on_sale_date" json:"on_sale_date,omitempty"`
	ValidFrom  time.Time  `gorm:"column:valid_from;not null" json:"valid_from"`
	ValidTo    *time.Time `gorm:"column:valid_to;index" json:"valid_to,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Price) TableName() string { return "price" }
