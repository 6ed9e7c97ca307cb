package repositories

import (
	"context"
	"errors"
	"fmt"

	"tienda/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetCartWithItems loads the user's cart with its items and their products,
// oldest item first. Products deleted from the catalog are still loaded.
func (r *GORMCartRepository) GetCartWithItems(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC, cart_items.id ASC")
		}).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart of user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart of user %s: %w", userID, err)
	}
	return &cart, nil
}

func (r *GORMCartRepository) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where(models.Cart{UserID: userID}).
		Attrs(models.Cart{ID: uuid.New().String()}).
		FirstOrCreate(&cart).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request created it first.
		cart = models.Cart{}
		err = r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart of user %s: %w", userID, err)
	}
	return &cart, nil
}

func (r *GORMCartRepository) FindItem(ctx context.Context, cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s in cart %s: %w", productID, cartID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

// AddItemQuantity inserts the product into the cart or adds quantity to the
// existing row in a single statement, and returns the quantity now stored.
func (r *GORMCartRepository) AddItemQuantity(ctx context.Context, cartID, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("invalid cart quantity %d for product %s", quantity, productID)
	}

	item := models.CartItem{
		ID:        uuid.New().String(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	merge := clause.Assignments(map[string]interface{}{
		"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
		"updated_at": gorm.Expr("excluded.updated_at"),
	})
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: merge,
		}).
		Create(&item).Error
	if err != nil {
		return 0, fmt.Errorf("failed to add product %s to cart %s: %w", productID, cartID, err)
	}

	stored, err := r.FindItem(ctx, cartID, productID)
	if err != nil {
		return 0, err
	}
	return stored.Quantity, nil
}

// ReleaseItemQuantity takes back quantity units added by AddItemQuantity and
// drops the row when nothing is left.
func (r *GORMCartRepository) ReleaseItemQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	db := r.db.WithContext(ctx)
	err := db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity)).Error
	if err != nil {
		return fmt.Errorf("failed to release product %s from cart %s: %w", productID, cartID, err)
	}
	err = db.Where("cart_id = ? AND product_id = ? AND quantity <= 0", cartID, productID).Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to drop empty cart item: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// DeleteItem removes a product from a cart and reports whether a row was removed.
func (r *GORMCartRepository) DeleteItem(ctx context.Context, cartID, productID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Clear removes every item of the user's cart. The cart row itself is kept.
func (r *GORMCartRepository) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("userID is empty")
	}

	carts := r.db.WithContext(ctx).Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
	if err := r.db.WithContext(ctx).Where("cart_id IN (?)", carts).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart of user %s: %w", userID, err)
	}
	return nil
}
