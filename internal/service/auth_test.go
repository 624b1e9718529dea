package service

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t, 5)
	svc := NewAuthService(e.users, 100)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alex", "hunter2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.CreditBalance != 100 {
		t.Errorf("initial credit = %.2f, want 100", user.CreditBalance)
	}

	if _, err := svc.Register(ctx, "alex", "other"); !errors.Is(err, ErrLoginTaken) {
		t.Errorf("duplicate login = %v, want ErrLoginTaken", err)
	}

	got, err := svc.Authenticate(ctx, "alex", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated id = %s, want %s", got.ID, user.ID)
	}

	if _, err := svc.Authenticate(ctx, "alex", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown login = %v, want ErrInvalidCredentials", err)
	}
}

func TestBalanceAndTopUp(t *testing.T) {
	e := newEnv(t, 5)
	svc := NewAuthService(e.users, 0)
	user := e.addUser(t, 20)
	ctx := context.Background()

	if err := svc.TopUp(ctx, user.ID, 30); err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	balance, err := svc.Balance(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 50 {
		t.Errorf("balance = %.2f, want 50", balance)
	}

	if err := svc.TopUp(ctx, user.ID, -5); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("negative top-up = %v, want ErrInvalidRequest", err)
	}
	if err := svc.TopUp(ctx, "missing", 5); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("unknown user = %v, want ErrEntityNotFound", err)
	}
}
