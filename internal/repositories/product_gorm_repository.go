package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tienda/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List returns one page of products matching q together with the total match count.
func (r *GORMProductRepository) List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	limit, offset := NormalizePage(q.Limit, q.Offset)
	filter := productFilter(q)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := r.db.WithContext(ctx).
		Scopes(filter).
		Preload("Category").
		Order(productOrder(q.Sort)).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func productFilter(q ProductQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !q.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
		if s := strings.TrimSpace(q.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
		}
		if q.CategoryID != "" {
			db = db.Where("category_id = ?", q.CategoryID)
		}
		if q.OnlyOffers {
			db = db.Where("is_offer = ? AND discount_price IS NOT NULL", true)
		}
		if q.MinPrice.Valid {
			db = db.Where("price >= ?", q.MinPrice.Decimal)
		}
		if q.MaxPrice.Valid {
			db = db.Where("price <= ?", q.MaxPrice.Decimal)
		}
		return db
	}
}

func productOrder(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "price ASC"
	case SortPriceDesc:
		return "price DESC"
	case SortName:
		return "name ASC"
	default:
		return "created_at DESC"
	}
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		if isCheckViolation(err) {
			return ErrInvalidStock
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{ID: product.ID}).
		Select("name", "description", "price", "discount_price", "is_offer", "stock", "is_active", "image_url", "category_id").
		Updates(product)
	if res.Error != nil {
		if isCheckViolation(res.Error) {
			return ErrInvalidStock
		}
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a product by its ID. Order items keep pointing at it.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetStock replaces the stock count of a product.
func (r *GORMProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("stock", stock)
	if res.Error != nil {
		if isCheckViolation(res.Error) {
			return ErrInvalidStock
		}
		return fmt.Errorf("failed to set stock of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetPromotion switches the offer flag and discount price of a product.
func (r *GORMProductRepository) SetPromotion(ctx context.Context, id string, isOffer bool, discount decimal.NullDecimal) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_offer":       isOffer,
		"discount_price": discount,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to set promotion of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// DecrementStock takes amount units off a product only if that many are left,
// so two concurrent orders can never drive the stock below zero.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("invalid stock decrement %d for product %s", amount, id)
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		UpdateColumn("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, ErrInsufficientStock)
	}
	return nil
}
