package service

import (
	"context"
	"errors"
	"testing"

	"campusmeal/internal/model"
)

func TestStrategyFactory(t *testing.T) {
	e := newEnv(t, 5)
	strategies := NewPaymentStrategies(
		NewStudentCreditStrategy(e.users),
		NewExternalCardStrategy(approvingGateway()),
	)

	if _, err := strategies.ForMethod(model.PaymentMethodStudentCredit); err != nil {
		t.Errorf("ForMethod(STUDENT_CREDIT) = %v", err)
	}
	if _, err := strategies.ForMethod(model.PaymentMethodExternalCard); err != nil {
		t.Errorf("ForMethod(EXTERNAL_CARD) = %v", err)
	}
	if _, err := strategies.ForMethod("CASH"); err == nil {
		t.Error("unknown method should fail fast")
	}
}

func TestStudentCreditProcessPayment(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 50.00)
	strategy := NewStudentCreditStrategy(e.users)
	ctx := context.Background()

	ok, err := strategy.CanPay(ctx, user.ID, 17.00)
	if err != nil || !ok {
		t.Fatalf("CanPay = %v, %v; want true", ok, err)
	}

	result, err := strategy.ProcessPayment(ctx, user.ID, 17.00, "")
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if !result.Success || result.TransactionID == "" {
		t.Errorf("result = %+v, want success with transaction id", result)
	}

	u, err := e.users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if u.CreditBalance != 33.00 {
		t.Errorf("balance = %.2f, want 33.00", u.CreditBalance)
	}
}

func TestStudentCreditInsufficientFunds(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 10.00)
	strategy := NewStudentCreditStrategy(e.users)
	ctx := context.Background()

	ok, err := strategy.CanPay(ctx, user.ID, 17.00)
	if err != nil || ok {
		t.Fatalf("CanPay = %v, %v; want false", ok, err)
	}

	result, err := strategy.ProcessPayment(ctx, user.ID, 17.00, "")
	if err != nil {
		t.Fatalf("insufficient funds must be a reported failure, got error %v", err)
	}
	if result.Success || result.ErrorCode != CodeInsufficientFunds {
		t.Errorf("result = %+v, want INSUFFICIENT_FUNDS", result)
	}

	u, _ := e.users.FindByID(ctx, user.ID)
	if u.CreditBalance != 10.00 {
		t.Errorf("balance = %.2f, want untouched 10.00", u.CreditBalance)
	}
}

func TestExternalCardAmountWindow(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		wantCode string
	}{
		{"below minimum", 0.005, CodeAmountTooLow},
		{"above maximum", 500.01, CodeAmountTooHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := approvingGateway()
			strategy := NewExternalCardStrategy(gw)

			result, err := strategy.ProcessPayment(context.Background(), "u", tt.amount, "tok")
			if err != nil {
				t.Fatalf("ProcessPayment: %v", err)
			}
			if result.Success || result.ErrorCode != tt.wantCode {
				t.Errorf("result = %+v, want code %s", result, tt.wantCode)
			}
		})
	}
}

func TestExternalCardDoesNotTouchCredit(t *testing.T) {
	e := newEnv(t, 5)
	user := e.addUser(t, 1.00)
	strategy := NewExternalCardStrategy(approvingGateway())
	ctx := context.Background()

	result, err := strategy.ProcessPayment(ctx, user.ID, 400.00, "tok")
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}

	u, _ := e.users.FindByID(ctx, user.ID)
	if u.CreditBalance != 1.00 {
		t.Errorf("card payment mutated credit balance: %.2f", u.CreditBalance)
	}
}

func TestExternalCardDeclineAndUnavailable(t *testing.T) {
	declined := NewExternalCardStrategy(&stubGateway{
		available: true,
		result:    &ChargeResult{Success: false, DeclineReason: "card declined by issuer"},
	})
	result, err := declined.ProcessPayment(context.Background(), "u", 10, "tok")
	if err != nil {
		t.Fatal(err)
	}
	if result.Success || result.ErrorCode != CodeCardDeclined {
		t.Errorf("result = %+v, want CARD_DECLINED", result)
	}

	down := NewExternalCardStrategy(&stubGateway{available: false})
	result, err = down.ProcessPayment(context.Background(), "u", 10, "tok")
	if err != nil {
		t.Fatal(err)
	}
	if result.Success || result.ErrorCode != CodeServiceUnavailable {
		t.Errorf("result = %+v, want SERVICE_UNAVAILABLE", result)
	}
}

func TestExternalCardGatewayError(t *testing.T) {
	broken := NewExternalCardStrategy(&stubGateway{available: true, err: errors.New("connection reset")})
	result, err := broken.ProcessPayment(context.Background(), "u", 10, "tok")
	if err == nil {
		t.Fatalf("gateway failure must surface as an error, got %+v", result)
	}
}
