package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CompanyID   uint            `json:"company_id" gorm:"index"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	ImageURL    *string         `json:"image_url,omitempty"`

	// Quantity is the eagerly maintained sum of the stock ledger below.
	// The ledger is the source of truth; every mutation goes through an
	// atomic increment so the two never drift.
	Quantity     int `json:"quantity"`
	ReorderPoint int `json:"reorder_point"`

	Stocks []Stock `json:"stocks,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stock is one signed movement in an item's append-only ledger.
type Stock struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ItemID    uint      `json:"item_id" gorm:"index"`
	UserID    uint      `json:"user_id"`
	CompanyID uint      `json:"company_id" gorm:"index"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
