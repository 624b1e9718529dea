package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campusmeal/internal/model"
	"campusmeal/internal/worker"
)

func newCheckout(e *env, gw PaymentGateway) *CheckoutService {
	strategies := NewPaymentStrategies(
		NewStudentCreditStrategy(e.users),
		NewExternalCardStrategy(gw),
	)
	return NewCheckoutService(e.orders, e.restaurants, strategies, DefaultPaymentWindow)
}

func TestProcessPaymentHappyPath(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 50.00)
	order := e.placeOrder(t, user.ID, model.PaymentMethodStudentCredit, 17.00)
	slot := e.reserveSlot(t, order)
	svc := newCheckout(e, approvingGateway())
	ctx := context.Background()

	resp, err := svc.ProcessPayment(ctx, order.ID, "")
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if !resp.Success || resp.Method != model.PaymentMethodStudentCredit || resp.Amount != 17.00 {
		t.Errorf("response = %+v", resp)
	}

	u, _ := e.users.FindByID(ctx, user.ID)
	if u.CreditBalance != 33.00 {
		t.Errorf("balance = %.2f, want 33.00", u.CreditBalance)
	}

	saved, _ := e.orders.FindByID(ctx, order.ID)
	if saved.Status != model.OrderStatusPaid {
		t.Errorf("order status = %s, want PAID", saved.Status)
	}
	if got := slot.ReservedCount(); got != 1 {
		t.Errorf("paid order must keep its reservation, reservedCount = %d", got)
	}

	// Confirmation fixes the promised delivery time.
	before := time.Now()
	if err := saved.Confirm(before); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if saved.DeliveryTime == nil || !saved.DeliveryTime.Equal(before.Add(30*time.Minute)) {
		t.Errorf("DeliveryTime = %v", saved.DeliveryTime)
	}
}

func TestProcessPaymentInsufficientFundsReleasesSlot(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 10.00)
	order := e.placeOrder(t, user.ID, model.PaymentMethodStudentCredit, 17.00)
	slot := e.reserveSlot(t, order)
	svc := newCheckout(e, approvingGateway())
	ctx := context.Background()

	resp, err := svc.ProcessPayment(ctx, order.ID, "")
	if err != nil {
		t.Fatalf("reported failure must not be an error: %v", err)
	}
	if resp.Success || resp.ErrorCode != CodeInsufficientFunds {
		t.Errorf("response = %+v, want INSUFFICIENT_FUNDS", resp)
	}

	saved, _ := e.orders.FindByID(ctx, order.ID)
	if saved.Status != model.OrderStatusExpired {
		t.Errorf("order status = %s, want EXPIRED", saved.Status)
	}
	if saved.DeliverySlotID != "" {
		t.Error("expired order must not keep a slot binding")
	}
	if got := slot.ReservedCount(); got != 0 {
		t.Errorf("slot reservedCount = %d, want released to 0", got)
	}

	u, _ := e.users.FindByID(ctx, user.ID)
	if u.CreditBalance != 10.00 {
		t.Errorf("balance = %.2f, want untouched 10.00", u.CreditBalance)
	}
}

func TestProcessPaymentTimeoutBoundary(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		timeout bool
	}{
		{"just inside the window", 14*time.Minute + 59*time.Second, false},
		{"just past the window", 15*time.Minute + time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, 5)
			user := e.addUser(t, 50.00)
			order := e.placeOrder(t, user.ID, model.PaymentMethodStudentCredit, 17.00)
			slot := e.reserveSlot(t, order)
			order.OrderedAt = time.Now().Add(-tt.age)
			svc := newCheckout(e, approvingGateway())

			resp, err := svc.ProcessPayment(context.Background(), order.ID, "")
			if tt.timeout {
				if !errors.Is(err, ErrPaymentTimeout) {
					t.Fatalf("err = %v, want ErrPaymentTimeout", err)
				}
				saved, _ := e.orders.FindByID(context.Background(), order.ID)
				if saved.Status != model.OrderStatusExpired {
					t.Errorf("order status = %s, want EXPIRED", saved.Status)
				}
				if got := slot.ReservedCount(); got != 0 {
					t.Errorf("slot reservedCount = %d, want 0", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProcessPayment: %v", err)
			}
			if !resp.Success {
				t.Errorf("response = %+v, want dispatched and successful", resp)
			}
		})
	}
}

func TestProcessPaymentRequiresSlot(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 50.00)
	order := e.placeOrder(t, user.ID, model.PaymentMethodStudentCredit, 17.00)
	svc := newCheckout(e, approvingGateway())

	if _, err := svc.ProcessPayment(context.Background(), order.ID, ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("payment without slot = %v, want ErrInvalidState", err)
	}
}

func TestProcessPaymentUnknownOrder(t *testing.T) {
	e := newEnv(t, 5)
	svc := newCheckout(e, approvingGateway())

	if _, err := svc.ProcessPayment(context.Background(), "missing", ""); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("unknown order = %v, want ErrEntityNotFound", err)
	}
	if _, err := svc.ProcessPayment(context.Background(), "", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty order id = %v, want ErrInvalidRequest", err)
	}
}

func TestProcessPaymentCardDeclineReleasesSlot(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 0)
	order := e.placeOrder(t, user.ID, model.PaymentMethodExternalCard, 20.00)
	slot := e.reserveSlot(t, order)
	svc := newCheckout(e, &stubGateway{
		available: true,
		result:    &ChargeResult{Success: false, DeclineReason: "card declined by issuer"},
	})

	resp, err := svc.ProcessPayment(context.Background(), order.ID, "tok")
	if err != nil {
		t.Fatalf("decline must be reported, not thrown: %v", err)
	}
	if resp.Success || resp.ErrorCode != CodeCardDeclined {
		t.Errorf("response = %+v, want CARD_DECLINED", resp)
	}
	if got := slot.ReservedCount(); got != 0 {
		t.Errorf("slot reservedCount = %d, want 0", got)
	}
}

func TestProcessPaymentCrashPathStillReleases(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 0)
	order := e.placeOrder(t, user.ID, model.PaymentMethodExternalCard, 20.00)
	slot := e.reserveSlot(t, order)
	svc := newCheckout(e, &stubGateway{available: true, err: errors.New("connection reset")})
	ctx := context.Background()

	_, err := svc.ProcessPayment(ctx, order.ID, "tok")
	if err == nil {
		t.Fatal("gateway crash must propagate")
	}
	if errors.Is(err, ErrPaymentTimeout) || errors.Is(err, ErrInvalidState) {
		t.Errorf("crash must stay distinguishable from modeled failures: %v", err)
	}

	saved, _ := e.orders.FindByID(ctx, order.ID)
	if saved.Status != model.OrderStatusExpired {
		t.Errorf("order status = %s, want EXPIRED", saved.Status)
	}
	if got := slot.ReservedCount(); got != 0 {
		t.Errorf("slot reservedCount = %d, want released even on crash", got)
	}
}

func TestProcessPaymentRacingSweepReleasesOnce(t *testing.T) {
	for round := 0; round < 25; round++ {
		e := newEnv(t, 5)
		user := e.addUser(t, 50.00)
		order := e.placeOrder(t, user.ID, model.PaymentMethodStudentCredit, 17.00)
		order.OrderedAt = time.Now().Add(-20 * time.Minute)

		slot := e.slots[0]
		if err := slot.ReserveOrErr(); err != nil {
			t.Fatal(err)
		}
		if err := order.AssignDeliverySlot(slot.ID, time.Now().Add(-20*time.Minute)); err != nil {
			t.Fatal(err)
		}
		if err := order.StartPaymentTimeout(); err != nil {
			t.Fatal(err)
		}
		// A second reservation on the same slot makes a double release
		// observable: the counter must end at exactly one.
		if err := slot.ReserveOrErr(); err != nil {
			t.Fatal(err)
		}

		svc := newCheckout(e, approvingGateway())
		w := worker.NewExpirationWorker(e.orders, e.restaurants, time.Second, 5*time.Minute)

		var wg sync.WaitGroup
		var payErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, payErr = svc.ProcessPayment(context.Background(), order.ID, "")
		}()
		go func() {
			defer wg.Done()
			if err := w.Sweep(context.Background()); err != nil {
				t.Errorf("Sweep: %v", err)
			}
		}()
		wg.Wait()

		// Whoever lost the expire race reports the order as gone.
		if !errors.Is(payErr, ErrPaymentTimeout) && !errors.Is(payErr, ErrInvalidState) {
			t.Fatalf("round %d: payment err = %v, want timeout or invalid state", round, payErr)
		}
		if got := order.CurrentStatus(); got != model.OrderStatusExpired {
			t.Fatalf("round %d: order status = %s, want EXPIRED", round, got)
		}
		if got := slot.ReservedCount(); got != 1 {
			t.Fatalf("round %d: reservedCount = %d, want exactly 1 after a single release", round, got)
		}
	}
}

func TestProcessPaymentOnTerminalOrder(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 50)
	order := e.placeOrder(t, user.ID, model.PaymentMethodStudentCredit, 17.00)
	e.reserveSlot(t, order)
	svc := newCheckout(e, approvingGateway())
	ctx := context.Background()

	if _, err := svc.ProcessPayment(ctx, order.ID, ""); err != nil {
		t.Fatalf("first payment: %v", err)
	}

	// The order is PAID now; a second attempt must not double-charge.
	if _, err := svc.ProcessPayment(ctx, order.ID, ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second payment on PAID order = %v, want ErrInvalidState", err)
	}
	u, _ := e.users.FindByID(ctx, user.ID)
	if u.CreditBalance != 33.00 {
		t.Errorf("balance = %.2f, want 33.00 after a single charge", u.CreditBalance)
	}
}
