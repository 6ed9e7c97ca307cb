package repositories

import (
	"context"

	"tienda/internal/models"

	"github.com/shopspring/decimal"
)

// Product sort orders accepted by ProductQuery.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// ProductQuery filters and pages a product listing.
type ProductQuery struct {
	Search          string
	CategoryID      string
	OnlyOffers      bool
	MinPrice        decimal.NullDecimal
	MaxPrice        decimal.NullDecimal
	Sort            string
	Limit           int
	Offset          int
	IncludeInactive bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) error
	SetPromotion(ctx context.Context, id string, isOffer bool, discount decimal.NullDecimal) error
	DecrementStock(ctx context.Context, id string, amount int) error
}
