package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/google/uuid"
)

// OrderEventPublisher announces committed orders to other systems.
type OrderEventPublisher interface {
	PublishOrderPlaced(event models.OrderPlacedEvent) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	tx        repositories.TxManager
	repos     repositories.Repositories
	publisher OrderEventPublisher
	currency  string
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(tx repositories.TxManager, repos repositories.Repositories, publisher OrderEventPublisher, currency string) *OrderService {
	return &OrderService{
		tx:        tx,
		repos:     repos,
		publisher: publisher,
		currency:  currency,
	}
}

// PlaceOrder turns the requester's cart into a PENDING order and returns its ID.
//
// Every cart line is checked against live stock before anything is written.
// The order, its items and the stock decrements are then committed as one
// unit. Emptying the cart happens after the commit and never undoes the order.
func (s *OrderService) PlaceOrder(ctx context.Context, requester *models.Principal, details models.ShippingDetails) (string, error) {
	if err := requireUser(requester); err != nil {
		return "", err
	}

	cart, err := s.repos.Carts.GetCartWithItems(ctx, requester.UserID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return "", fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return "", ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	lines := make([]PricedLine, 0, len(cart.Items))
	for i, cartItem := range cart.Items {
		product, err := s.repos.Products.GetByID(ctx, cartItem.ProductID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("failed to load product %s: %w", cartItem.ProductID, err)
		}
		if product == nil || !product.IsActive {
			name := cartItem.Product.Name
			if name == "" {
				name = cartItem.ProductID
			}
			return "", &InsufficientStockError{
				ProductID:   cartItem.ProductID,
				ProductName: name,
				Requested:   cartItem.Quantity,
			}
		}
		if product.Stock < cartItem.Quantity {
			return "", &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   cartItem.Quantity,
				Available:   product.Stock,
			}
		}

		price := product.EffectivePrice()
		items = append(items, models.OrderItem{
			ID:          uuid.New().String(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Position:    i,
			Quantity:    cartItem.Quantity,
			Price:       price,
		})
		lines = append(lines, PricedLine{UnitPrice: price, Quantity: cartItem.Quantity})
	}

	totals := ComputeTotals(lines)
	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        requester.UserID,
		CustomerName:  details.CustomerName,
		Address:       details.Address,
		City:          details.City,
		Phone:         details.Phone,
		DocumentID:    details.DocumentID,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		ShippingPrice: totals.ShippingPrice,
		Total:         totals.Total,
		Currency:      s.currency,
		Status:        models.OrderStatusPending,
		Items:         items,
	}

	err = s.tx.WithinTransaction(ctx, func(repos repositories.Repositories) error {
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := repos.Products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repositories.ErrInsufficientStock) {
					// Someone else bought the last units after the pre-flight check.
					return &InsufficientStockError{
						ProductID:   item.ProductID,
						ProductName: item.ProductName,
						Requested:   item.Quantity,
					}
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			return "", stockErr
		}
		log.Printf("Order placement for user %s rolled back: %v", requester.UserID, err)
		return "", fmt.Errorf("%w: %w", ErrTransactionFailure, err)
	}

	if err := s.repos.Carts.Clear(ctx, requester.UserID); err != nil {
		log.Printf("Warning: order %s created but cart of user %s was not cleared: %v", order.ID, requester.UserID, err)
	}
	s.publishOrderPlaced(order)

	return order.ID, nil
}

func (s *OrderService) publishOrderPlaced(order *models.Order) {
	if s.publisher == nil {
		return
	}

	event := models.OrderPlacedEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Status:   order.Status,
		Subtotal: order.Subtotal,
		Tax:      order.Tax,
		Total:    order.Total,
		Currency: order.Currency,
		PlacedAt: time.Now().UTC(),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, models.OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.publisher.PublishOrderPlaced(event); err != nil {
		log.Printf("Warning: Failed to publish order placed event for order %s: %v", order.ID, err)
	}
}

// GetOrder returns one of the requester's orders. Orders of other users are
// reported as not found so their existence does not leak.
func (s *OrderService) GetOrder(ctx context.Context, requester *models.Principal, id string) (*models.Order, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}

	order, err := s.repos.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	if order.UserID != requester.UserID {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListOrders returns the requester's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, requester *models.Principal, limit, offset int) ([]models.Order, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}
	return s.repos.Orders.ListByUser(ctx, requester.UserID, limit, offset)
}

// ListAllOrders returns every order. Admin only.
func (s *OrderService) ListAllOrders(ctx context.Context, requester *models.Principal, limit, offset int) ([]models.Order, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	return s.repos.Orders.ListAll(ctx, limit, offset)
}

// UpdateOrderStatus moves an order to another status. Admin only.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, requester *models.Principal, id string, status models.OrderStatus) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: invalid order status: %s", ErrInvalidInput, status)
	}

	if err := s.repos.Orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}
