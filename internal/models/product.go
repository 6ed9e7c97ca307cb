package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a sellable item of the catalog.
type Product struct {
	ID            string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string              `json:"name" gorm:"type:varchar(150);not null"`
	Description   string              `json:"description" gorm:"type:text"`
	Price         decimal.Decimal     `json:"price" gorm:"type:decimal(12,2);not null"`
	DiscountPrice decimal.NullDecimal `json:"discount_price" gorm:"type:decimal(12,2)"`
	IsOffer       bool                `json:"is_offer" gorm:"not null"`
	Stock         int                 `json:"stock" gorm:"not null;check:chk_products_stock,stock >= 0"`
	IsActive      bool                `json:"is_active" gorm:"not null;index"`
	ImageURL      string              `json:"image_url" gorm:"type:varchar(255)"`
	CategoryID    *string             `json:"category_id" gorm:"type:varchar(36);index"`
	Category      *Category           `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `json:"-" gorm:"index"`
}

// EffectivePrice is the unit price a customer pays right now: the discount
// price when the product is on offer and has one, the regular price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.IsOffer && p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}
