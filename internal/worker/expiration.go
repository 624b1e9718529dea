package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

// ExpirationWorker is the safety net behind the in-flow payment timeout:
// it periodically expires PENDING orders whose slot reservation has
// outlived the configured timeout and hands the capacity back, catching
// clients that reserved a slot and never attempted payment.
type ExpirationWorker struct {
	orders      storage.OrderStore
	restaurants storage.RestaurantStore
	interval    time.Duration
	timeout     time.Duration
}

func NewExpirationWorker(orders storage.OrderStore, restaurants storage.RestaurantStore, interval, timeout time.Duration) *ExpirationWorker {
	return &ExpirationWorker{
		orders:      orders,
		restaurants: restaurants,
		interval:    interval,
		timeout:     timeout,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	slog.Info("starting expiration worker", "interval", w.interval, "timeout", w.timeout)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("expiration worker stopped")
			return
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				slog.Error("expiration sweep failed", "error", err)
			}
		}
	}
}

// Sweep expires every stale PENDING order. Orders already expired are
// excluded by the status filter, so repeated sweeps are harmless.
func (w *ExpirationWorker) Sweep(ctx context.Context) error {
	orders, err := w.orders.FindAllByStatus(ctx, model.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("get pending orders: %w", err)
	}

	now := time.Now()
	for _, order := range orders {
		_, reservedAt := order.SlotBinding()
		if reservedAt == nil {
			continue
		}
		if now.Sub(*reservedAt) <= w.timeout {
			continue
		}

		// The store transition is atomic; when a concurrent payment
		// failure expires the same order, only one side gets the slot.
		slotID, expired, err := w.orders.Expire(ctx, order.ID)
		if err != nil {
			slog.Error("failed to expire order", "order_id", order.ID, "error", err)
			continue
		}
		if !expired {
			continue
		}
		if slotID != "" {
			if restaurant, ok := w.restaurants.FindByID(order.RestaurantID); ok {
				restaurant.Schedule.ReleaseSlot(slotID)
			} else {
				slog.Error("restaurant missing during sweep release", "restaurant_id", order.RestaurantID, "slot_id", slotID)
			}
		}
		slog.Info("expired stale order", "order_id", order.ID, "slot_id", slotID)
	}

	return nil
}
