package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

// OrderService covers order placement and the post-payment steps that
// need no slot or payment coordination.
type OrderService struct {
	orders storage.OrderStore
	carts  *CartService
}

func NewOrderService(orders storage.OrderStore, carts *CartService) *OrderService {
	return &OrderService{orders: orders, carts: carts}
}

// PlaceFromCart turns the user's cart into a CREATED order, capturing
// prices and the payment method. One active order per user.
func (s *OrderService) PlaceFromCart(ctx context.Context, userID, paymentMethod string) (*model.Order, error) {
	cart := s.carts.Get(userID)
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	active, err := s.orders.ExistsActiveOrderByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check active order: %w", err)
	}
	if active {
		return nil, ErrActiveOrderExists
	}

	order, err := model.NewOrder(userID, cart.RestaurantID, paymentMethod, cart.OrderItems())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	s.carts.Clear(userID)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Confirm finalizes a paid order, fixing the promised delivery time.
func (s *OrderService) Confirm(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Confirm(time.Now()); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	return order, nil
}
