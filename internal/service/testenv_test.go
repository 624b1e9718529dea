package service

import (
	"context"
	"testing"
	"time"

	"campusmeal/internal/model"
	"campusmeal/internal/storage/memory"
)

// env bundles in-memory stores with one restaurant that has delivery
// slots open for tomorrow.
type env struct {
	orders      *memory.OrderStore
	users       *memory.UserStore
	restaurants *memory.RestaurantStore
	restaurant  *model.Restaurant
	slots       []*model.DeliverySlot
}

func newEnv(t *testing.T, slotCapacity int) *env {
	t.Helper()
	e := &env{
		orders:      memory.NewOrderStore(),
		users:       memory.NewUserStore(),
		restaurants: memory.NewRestaurantStore(),
	}
	e.restaurant = model.NewRestaurant("Campus Canteen", 10, 22)
	e.restaurants.Add(e.restaurant)

	tomorrow := time.Now().Add(24 * time.Hour)
	open, _ := e.restaurant.OperatingWindow(tomorrow)
	e.slots = e.restaurant.Schedule.GenerateDailySlots(open, open.Add(2*time.Hour), slotCapacity)
	if len(e.slots) == 0 {
		t.Fatal("no slots generated for test restaurant")
	}
	return e
}

func (e *env) addUser(t *testing.T, balance float64) *model.User {
	t.Helper()
	u := &model.User{
		ID:            model.NewID(),
		Login:         "student-" + model.NewID()[:8],
		CreditBalance: balance,
		CreatedAt:     time.Now(),
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *env) placeOrder(t *testing.T, userID, method string, amount float64) *model.Order {
	t.Helper()
	o, err := model.NewOrder(userID, e.restaurant.ID, method, []model.OrderItem{
		{DishID: "d1", Name: "Menu of the day", Price: amount, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if err := e.orders.Save(context.Background(), o); err != nil {
		t.Fatalf("save order: %v", err)
	}
	return o
}

func (e *env) reserveSlot(t *testing.T, order *model.Order) *model.DeliverySlot {
	t.Helper()
	svc := NewSlotService(e.orders, e.restaurants)
	slot := e.slots[0]
	if _, err := svc.SelectDeliverySlot(context.Background(), order.ID, slot.ID); err != nil {
		t.Fatalf("select slot: %v", err)
	}
	return slot
}

// stubGateway is a deterministic PaymentGateway for card tests.
type stubGateway struct {
	available bool
	result    *ChargeResult
	err       error
}

func (g *stubGateway) Available() bool { return g.available }

func (g *stubGateway) Charge(context.Context, float64, string) (*ChargeResult, error) {
	return g.result, g.err
}

func approvingGateway() *stubGateway {
	return &stubGateway{
		available: true,
		result:    &ChargeResult{Success: true, TransactionID: "tx-ok"},
	}
}
