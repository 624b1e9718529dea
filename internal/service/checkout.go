package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

// DefaultPaymentWindow is how long after order creation a payment
// attempt is still accepted.
const DefaultPaymentWindow = 15 * time.Minute

// CheckoutService runs the payment step of the order lifecycle. Its one
// structural rule: on every exit except a successful payment, the
// reserved slot is released and the order expired. Reported payment
// failures come back as a response; unexpected failures run the same
// cleanup and then propagate.
type CheckoutService struct {
	orders        storage.OrderStore
	restaurants   storage.RestaurantStore
	strategies    *PaymentStrategies
	paymentWindow time.Duration
}

func NewCheckoutService(orders storage.OrderStore, restaurants storage.RestaurantStore, strategies *PaymentStrategies, paymentWindow time.Duration) *CheckoutService {
	if paymentWindow <= 0 {
		paymentWindow = DefaultPaymentWindow
	}
	return &CheckoutService{
		orders:        orders,
		restaurants:   restaurants,
		strategies:    strategies,
		paymentWindow: paymentWindow,
	}
}

// PaymentResponse is the terminal outcome of a payment attempt.
type PaymentResponse struct {
	OrderID       string  `json:"order_id"`
	Success       bool    `json:"success"`
	Method        string  `json:"method"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Message       string  `json:"message,omitempty"`
	ErrorCode     string  `json:"error_code,omitempty"`
}

// ProcessPayment charges the order's fixed payment method. The timeout
// check runs before any strategy dispatch so a stale request can never
// silently succeed.
func (s *CheckoutService) ProcessPayment(ctx context.Context, orderID, cardToken string) (*PaymentResponse, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id required", ErrInvalidRequest)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrEntityNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	switch status := order.CurrentStatus(); status {
	case model.OrderStatusConfirmed, model.OrderStatusExpired:
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidState, status)
	case model.OrderStatusPaid:
		return nil, fmt.Errorf("%w: order already paid", ErrInvalidState)
	}
	if slotID, _ := order.SlotBinding(); slotID == "" {
		return nil, fmt.Errorf("%w: payment requires a reserved delivery slot", ErrInvalidState)
	}

	if time.Since(order.OrderedAt) > s.paymentWindow {
		s.expireAndRelease(ctx, order)
		return nil, fmt.Errorf("%w: order placed %s ago", ErrPaymentTimeout,
			time.Since(order.OrderedAt).Round(time.Second))
	}

	strategy, err := s.strategies.ForMethod(order.PaymentMethod)
	if err != nil {
		s.expireAndRelease(ctx, order)
		return nil, err
	}

	result, err := strategy.ProcessPayment(ctx, order.UserID, order.TotalAmount, cardToken)
	if err != nil {
		// Crash path: clean up first, then let the caller see the failure.
		s.expireAndRelease(ctx, order)
		return nil, fmt.Errorf("payment processing: %w", err)
	}

	if !result.Success {
		s.expireAndRelease(ctx, order)
		return &PaymentResponse{
			OrderID:   order.ID,
			Success:   false,
			Method:    order.PaymentMethod,
			Amount:    order.TotalAmount,
			Message:   result.Message,
			ErrorCode: result.ErrorCode,
		}, nil
	}

	if err := order.MarkAsPaid(); err != nil {
		s.expireAndRelease(ctx, order)
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	if err := s.orders.Save(ctx, order); err != nil {
		s.expireAndRelease(ctx, order)
		return nil, fmt.Errorf("save order: %w", err)
	}

	return &PaymentResponse{
		OrderID:       order.ID,
		Success:       true,
		Method:        order.PaymentMethod,
		Amount:        order.TotalAmount,
		TransactionID: result.TransactionID,
		Message:       result.Message,
	}, nil
}

// expireAndRelease moves the order to EXPIRED and hands its slot
// capacity back. The store performs the transition atomically, so when
// the sweep races this path only the winner releases the capacity.
func (s *CheckoutService) expireAndRelease(ctx context.Context, order *model.Order) {
	slotID, expired, err := s.orders.Expire(ctx, order.ID)
	if err != nil {
		slog.Error("failed to expire order", "order_id", order.ID, "error", err)
		return
	}
	if !expired || slotID == "" {
		return
	}
	if restaurant, ok := s.restaurants.FindByID(order.RestaurantID); ok {
		restaurant.Schedule.ReleaseSlot(slotID)
	} else {
		slog.Error("restaurant missing during slot release", "restaurant_id", order.RestaurantID, "slot_id", slotID)
	}
}
