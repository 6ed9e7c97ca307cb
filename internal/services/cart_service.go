package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartLine is one priced row of a cart view. Lines of products that were
// deleted or deactivated are not Available and carry no price.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// CartView is the cart as shown to its owner, priced with live product data.
// Totals only cover available lines.
type CartView struct {
	Items []CartLine `json:"items"`
	Totals
}

// CartService handles the per-user shopping cart.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
	}
}

// GetCart returns the requester's cart. A user without a cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, requester *models.Principal) (*CartView, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}

	view := &CartView{Items: []CartLine{}}
	cart, err := s.carts.GetCartWithItems(ctx, requester.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			view.Totals = ComputeTotals(nil)
			return view, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines := make([]PricedLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		line := CartLine{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			ImageURL:  item.Product.ImageURL,
			UnitPrice: decimal.Zero,
			Quantity:  item.Quantity,
			LineTotal: decimal.Zero,
			Stock:     item.Product.Stock,
			Available: sellable(&item.Product),
		}
		if line.Available {
			priced := PricedLine{UnitPrice: item.Product.EffectivePrice(), Quantity: item.Quantity}
			lines = append(lines, priced)
			line.UnitPrice = priced.UnitPrice
			line.LineTotal = priced.Amount()
		} else {
			line.Stock = 0
		}
		view.Items = append(view.Items, line)
	}
	view.Totals = ComputeTotals(lines)
	return view, nil
}

// sellable reports whether a product can still be bought.
func sellable(p *models.Product) bool {
	return p.ID != "" && p.IsActive && !p.DeletedAt.Valid
}

// liveProduct loads a sellable product or fails with ErrNotFound.
func (s *CartService) liveProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	if !product.IsActive {
		return nil, ErrNotFound
	}
	return product, nil
}

func checkStock(product *models.Product, quantity int) error {
	if product.Stock < quantity {
		return &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}
	return nil
}

// AddItem puts quantity units of a product in the cart. A product already in
// the cart has its quantity increased instead of getting a second row. The
// merge is a single write; when the merged quantity exceeds the stock the
// added units are taken back.
func (s *CartService) AddItem(ctx context.Context, requester *models.Principal, productID string, quantity int) error {
	if err := requireUser(requester); err != nil {
		return err
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	product, err := s.liveProduct(ctx, productID)
	if err != nil {
		return err
	}
	if err := checkStock(product, quantity); err != nil {
		return err
	}

	cart, err := s.carts.GetOrCreateCart(ctx, requester.UserID)
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}

	stored, err := s.carts.AddItemQuantity(ctx, cart.ID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	if err := checkStock(product, stored); err != nil {
		if releaseErr := s.carts.ReleaseItemQuantity(ctx, cart.ID, productID, quantity); releaseErr != nil {
			log.Printf("Warning: could not take back %d units of %s from cart %s: %v", quantity, productID, cart.ID, releaseErr)
		}
		return err
	}
	return nil
}

// UpdateItem sets the quantity of a product already in the cart. A quantity
// of zero or less removes the product.
func (s *CartService) UpdateItem(ctx context.Context, requester *models.Principal, productID string, quantity int) error {
	if err := requireUser(requester); err != nil {
		return err
	}
	if quantity <= 0 {
		if err := s.RemoveItem(ctx, requester, productID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	}

	cart, err := s.carts.GetOrCreateCart(ctx, requester.UserID)
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}
	existing, err := s.carts.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up cart item: %w", err)
	}

	product, err := s.liveProduct(ctx, productID)
	if err != nil {
		return err
	}
	if err := checkStock(product, quantity); err != nil {
		return err
	}
	return s.carts.UpdateItemQuantity(ctx, existing.ID, quantity)
}

// RemoveItem takes a product out of the cart.
func (s *CartService) RemoveItem(ctx context.Context, requester *models.Principal, productID string) error {
	if err := requireUser(requester); err != nil {
		return err
	}

	cart, err := s.carts.GetOrCreateCart(ctx, requester.UserID)
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}
	deleted, err := s.carts.DeleteItem(ctx, cart.ID, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// Clear empties the requester's cart.
func (s *CartService) Clear(ctx context.Context, requester *models.Principal) error {
	if err := requireUser(requester); err != nil {
		return err
	}
	return s.carts.Clear(ctx, requester.UserID)
}
