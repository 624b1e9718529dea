package model

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	OrderStatusCreated   = "CREATED"
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusExpired   = "EXPIRED"
)

const (
	PaymentMethodStudentCredit = "STUDENT_CREDIT"
	PaymentMethodExternalCard  = "EXTERNAL_CARD"
)

// ConfirmedDeliveryLag is how far after confirmation delivery is promised.
const ConfirmedDeliveryLag = 30 * time.Minute

var (
	ErrOrderAlreadyConfirmed = errors.New("order already confirmed")
	ErrOrderExpired          = errors.New("order expired")
	ErrInvalidOrderState     = errors.New("invalid order state")
	ErrSlotAlreadyAssigned   = errors.New("order already has a delivery slot")
	ErrNoSlotAssigned        = errors.New("order has no delivery slot")
)

// OrderItem is a dish reference with the price captured at order time.
type OrderItem struct {
	DishID   string  `json:"dish_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order is the central entity of the checkout flow. Status moves
// CREATED → PENDING → PAID → CONFIRMED, with EXPIRED reachable from any
// non-terminal state. CONFIRMED and EXPIRED are terminal; once reached
// the order never mutates again. DeliverySlotID and SlotReservedAt are
// always set and cleared together.
//
// The checkout flow and the expiration sweep can hold the same Order at
// the same time, so every state transition and every read of Status or
// the slot binding goes through mu. The remaining fields are fixed at
// construction and safe to read directly.
type Order struct {
	mu sync.Mutex

	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	RestaurantID   string      `json:"restaurant_id"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"total_amount"`
	PaymentMethod  string      `json:"payment_method"`
	Status         string      `json:"status"`
	DeliverySlotID string      `json:"delivery_slot_id,omitempty"`
	SlotReservedAt *time.Time  `json:"slot_reserved_at,omitempty"`
	OrderedAt      time.Time   `json:"ordered_at"`
	DeliveryTime   *time.Time  `json:"delivery_time,omitempty"`
}

// NewOrder builds a CREATED order, capturing item prices and computing
// the immutable total. The payment method is fixed for the order's life.
func NewOrder(userID, restaurantID, paymentMethod string, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	if paymentMethod != PaymentMethodStudentCredit && paymentMethod != PaymentMethodExternalCard {
		return nil, fmt.Errorf("unsupported payment method: %s", paymentMethod)
	}
	var total float64
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for dish %s", it.Quantity, it.DishID)
		}
		total += it.Subtotal()
	}
	return &Order{
		ID:            NewID(),
		UserID:        userID,
		RestaurantID:  restaurantID,
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: paymentMethod,
		Status:        OrderStatusCreated,
		OrderedAt:     time.Now(),
	}, nil
}

func (o *Order) Terminal() bool {
	s := o.CurrentStatus()
	return s == OrderStatusConfirmed || s == OrderStatusExpired
}

// CurrentStatus reads the status under the order's lock.
func (o *Order) CurrentStatus() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Status
}

// SlotBinding reads the slot id and reservation time under the order's
// lock. An empty slot id means no slot is bound.
func (o *Order) SlotBinding() (slotID string, reservedAt *time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.DeliverySlotID, o.SlotReservedAt
}

// checkNotTerminal expects o.mu to be held.
func (o *Order) checkNotTerminal() error {
	switch o.Status {
	case OrderStatusConfirmed:
		return ErrOrderAlreadyConfirmed
	case OrderStatusExpired:
		return ErrOrderExpired
	}
	return nil
}

// AssignDeliverySlot binds the order to a slot whose capacity the caller
// has already reserved, and starts the reservation clock.
func (o *Order) AssignDeliverySlot(slotID string, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.checkNotTerminal(); err != nil {
		return err
	}
	if o.DeliverySlotID != "" {
		return ErrSlotAlreadyAssigned
	}
	o.DeliverySlotID = slotID
	at := now
	o.SlotReservedAt = &at
	return nil
}

// StartPaymentTimeout marks that the payment clock is running, moving
// the order to PENDING. It requires a bound slot.
func (o *Order) StartPaymentTimeout() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.checkNotTerminal(); err != nil {
		return err
	}
	if o.DeliverySlotID == "" {
		return ErrNoSlotAssigned
	}
	if o.Status == OrderStatusPaid {
		return ErrInvalidOrderState
	}
	o.Status = OrderStatusPending
	return nil
}

func (o *Order) MarkAsPaid() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.checkNotTerminal(); err != nil {
		return err
	}
	if o.Status != OrderStatusCreated && o.Status != OrderStatusPending {
		return ErrInvalidOrderState
	}
	o.Status = OrderStatusPaid
	return nil
}

// Confirm finalizes a paid (or still pending) order and fixes the
// promised delivery time. A CREATED order with no payment attempt cannot
// be confirmed.
func (o *Order) Confirm(now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.checkNotTerminal(); err != nil {
		return err
	}
	if o.Status != OrderStatusPending && o.Status != OrderStatusPaid {
		return ErrInvalidOrderState
	}
	dt := now.Add(ConfirmedDeliveryLag)
	o.DeliveryTime = &dt
	o.Status = OrderStatusConfirmed
	return nil
}

// Expire moves any non-terminal order to EXPIRED and clears the slot
// binding, returning the slot id the caller must release. The lock makes
// this a single winner-takes-all transition: of two concurrent callers
// exactly one gets the slot id, the other ErrOrderExpired.
func (o *Order) Expire() (releasedSlotID string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.Status {
	case OrderStatusExpired:
		return "", ErrOrderExpired
	case OrderStatusConfirmed:
		return "", ErrOrderAlreadyConfirmed
	}
	releasedSlotID = o.DeliverySlotID
	o.DeliverySlotID = ""
	o.SlotReservedAt = nil
	o.Status = OrderStatusExpired
	return releasedSlotID, nil
}
