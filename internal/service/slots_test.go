package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campusmeal/internal/model"
)

func TestSelectDeliverySlot(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 50)
	order := e.placeOrder(t, user.ID, model.PaymentMethodStudentCredit, 17.00)
	svc := NewSlotService(e.orders, e.restaurants)
	slot := e.slots[0]

	selection, err := svc.SelectDeliverySlot(context.Background(), order.ID, slot.ID)
	if err != nil {
		t.Fatalf("SelectDeliverySlot: %v", err)
	}
	if selection.SlotID != slot.ID {
		t.Errorf("selection slot = %s, want %s", selection.SlotID, slot.ID)
	}
	if !selection.EstimatedDelivery.Equal(slot.EndTime.Add(15 * time.Minute)) {
		t.Errorf("estimated delivery = %v", selection.EstimatedDelivery)
	}
	if got := slot.ReservedCount(); got != 1 {
		t.Errorf("reservedCount = %d, want 1", got)
	}

	saved, err := e.orders.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Status != model.OrderStatusPending {
		t.Errorf("order status = %s, want PENDING", saved.Status)
	}
	if saved.DeliverySlotID != slot.ID || saved.SlotReservedAt == nil {
		t.Error("order must carry the slot binding")
	}
}

func TestSelectDeliverySlotErrors(t *testing.T) {
	e := newEnv(t, 1)
	user := e.addUser(t, 50)
	svc := NewSlotService(e.orders, e.restaurants)
	ctx := context.Background()

	if _, err := svc.SelectDeliverySlot(ctx, "missing", e.slots[0].ID); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("unknown order = %v, want ErrEntityNotFound", err)
	}

	order := e.placeOrder(t, user.ID, model.PaymentMethodStudentCredit, 10)
	if _, err := svc.SelectDeliverySlot(ctx, order.ID, "missing"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("unknown slot = %v, want ErrSlotNotFound", err)
	}

	e.slots[1].Deactivate()
	if _, err := svc.SelectDeliverySlot(ctx, order.ID, e.slots[1].ID); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("deactivated slot = %v, want ErrSlotUnavailable", err)
	}

	if _, err := svc.SelectDeliverySlot(ctx, order.ID, e.slots[0].ID); err != nil {
		t.Fatalf("first selection: %v", err)
	}
	if _, err := svc.SelectDeliverySlot(ctx, order.ID, e.slots[2].ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second selection = %v, want ErrInvalidState", err)
	}
}

func TestConcurrentSelectionSingleCapacity(t *testing.T) {
	e := newEnv(t, 1)
	svc := NewSlotService(e.orders, e.restaurants)
	slot := e.slots[0]
	ctx := context.Background()

	userA := e.addUser(t, 50)
	userB := e.addUser(t, 50)
	orderA := e.placeOrder(t, userA.ID, model.PaymentMethodStudentCredit, 10)
	orderB := e.placeOrder(t, userB.ID, model.PaymentMethodStudentCredit, 12)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, id := range []string{orderA.ID, orderB.ID} {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			_, err := svc.SelectDeliverySlot(ctx, orderID, slot.ID)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var wins, unavailable int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotUnavailable):
			unavailable++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || unavailable != 1 {
		t.Errorf("wins = %d, unavailable = %d; want exactly one of each", wins, unavailable)
	}
	if got := slot.ReservedCount(); got != 1 {
		t.Errorf("reservedCount = %d, want 1", got)
	}
}
