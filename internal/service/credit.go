package service

import (
	"context"
	"errors"
	"fmt"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

// StudentCreditStrategy pays from the student's prepaid credit balance.
// The balance check and debit happen atomically inside the user store.
type StudentCreditStrategy struct {
	users storage.UserStore
}

func NewStudentCreditStrategy(users storage.UserStore) *StudentCreditStrategy {
	return &StudentCreditStrategy{users: users}
}

func (s *StudentCreditStrategy) Available() bool { return true }

func (s *StudentCreditStrategy) CanPay(ctx context.Context, userID string, amount float64) (bool, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load payer: %w", err)
	}
	return u.CreditBalance >= amount, nil
}

func (s *StudentCreditStrategy) ProcessPayment(ctx context.Context, userID string, amount float64, _ string) (*PaymentResult, error) {
	err := s.users.DebitCredit(ctx, userID, amount)
	switch {
	case errors.Is(err, storage.ErrInsufficientCredit):
		return &PaymentResult{
			Success:   false,
			ErrorCode: CodeInsufficientFunds,
			Message:   fmt.Sprintf("credit balance below %.2f", amount),
		}, nil
	case err != nil:
		return nil, fmt.Errorf("debit credit: %w", err)
	}
	return &PaymentResult{
		Success:       true,
		TransactionID: model.NewID(),
		Message:       fmt.Sprintf("charged %.2f from student credit", amount),
	}, nil
}
