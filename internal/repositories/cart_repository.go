package repositories

import (
	"context"

	"tienda/internal/models"
)

// CartRepository defines the interface for cart data access. Carts are keyed by user.
type CartRepository interface {
	GetCartWithItems(ctx context.Context, userID string) (*models.Cart, error)
	GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, productID string) (*models.CartItem, error)
	AddItemQuantity(ctx context.Context, cartID, productID string, quantity int) (int, error)
	ReleaseItemQuantity(ctx context.Context, cartID, productID string, quantity int) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID string) (bool, error)
	Clear(ctx context.Context, userID string) error
}
