package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

// SlotService binds orders to delivery slots. It is the only place in
// the system that consumes slot capacity; every decrement happens on
// the failure paths of checkout, the sweep, or an explicit expire.
type SlotService struct {
	orders      storage.OrderStore
	restaurants storage.RestaurantStore
}

func NewSlotService(orders storage.OrderStore, restaurants storage.RestaurantStore) *SlotService {
	return &SlotService{orders: orders, restaurants: restaurants}
}

// SlotSelection describes the reserved window back to the caller.
type SlotSelection struct {
	SlotID            string    `json:"slot_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
	Message           string    `json:"message"`
}

// SelectDeliverySlot reserves capacity on the slot and binds it to the
// order, starting the payment clock. If anything fails after the
// reservation the capacity is handed back before returning.
func (s *SlotService) SelectDeliverySlot(ctx context.Context, orderID, slotID string) (*SlotSelection, error) {
	if orderID == "" || slotID == "" {
		return nil, fmt.Errorf("%w: order id and slot id required", ErrInvalidRequest)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrEntityNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if bound, _ := order.SlotBinding(); bound != "" {
		return nil, fmt.Errorf("%w: order already has a delivery slot", ErrInvalidState)
	}
	if status := order.CurrentStatus(); status == model.OrderStatusConfirmed || status == model.OrderStatusExpired {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidState, status)
	}

	restaurant, ok := s.restaurants.FindByID(order.RestaurantID)
	if !ok {
		return nil, fmt.Errorf("%w: restaurant %s", ErrEntityNotFound, order.RestaurantID)
	}
	slot, ok := restaurant.Schedule.FindSlotByID(slotID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}

	if err := slot.ReserveOrErr(); err != nil {
		var unavailable *model.SlotUnavailableError
		if errors.As(err, &unavailable) {
			return nil, fmt.Errorf("%w: %s", ErrSlotUnavailable, unavailable.Reason)
		}
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}

	if err := order.AssignDeliverySlot(slot.ID, time.Now()); err != nil {
		slot.Release()
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := order.StartPaymentTimeout(); err != nil {
		slot.Release()
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.orders.Save(ctx, order); err != nil {
		slot.Release()
		return nil, fmt.Errorf("save order: %w", err)
	}

	return &SlotSelection{
		SlotID:            slot.ID,
		StartTime:         slot.StartTime,
		EndTime:           slot.EndTime,
		EstimatedDelivery: slot.DeliveryTime(),
		Message: fmt.Sprintf("delivery slot %s–%s reserved",
			slot.StartTime.Format("15:04"), slot.EndTime.Format("15:04")),
	}, nil
}

// AvailableSlots lists the restaurant's open slots for the given day.
func (s *SlotService) AvailableSlots(restaurantID string, date time.Time) ([]*model.DeliverySlot, error) {
	restaurant, ok := s.restaurants.FindByID(restaurantID)
	if !ok {
		return nil, fmt.Errorf("%w: restaurant %s", ErrEntityNotFound, restaurantID)
	}
	return restaurant.Schedule.AvailableSlotsOn(date), nil
}
