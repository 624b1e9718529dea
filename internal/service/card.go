package service

import (
	"context"
	"fmt"
)

// Per-transaction limits enforced before the gateway is called.
const (
	CardMinAmount = 0.01
	CardMaxAmount = 500.00
)

// ChargeResult is what the external card gateway reports back.
type ChargeResult struct {
	Success       bool
	TransactionID string
	DeclineReason string
}

// PaymentGateway is the boundary to the external card processor. A
// returned error means the call itself failed; a decline is a result.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64, cardToken string) (*ChargeResult, error)
	Available() bool
}

// ExternalCardStrategy charges an external card through the gateway.
// It never touches the student credit balance.
type ExternalCardStrategy struct {
	gateway PaymentGateway
}

func NewExternalCardStrategy(gw PaymentGateway) *ExternalCardStrategy {
	return &ExternalCardStrategy{gateway: gw}
}

func (s *ExternalCardStrategy) Available() bool {
	return s.gateway.Available()
}

func (s *ExternalCardStrategy) CanPay(_ context.Context, _ string, amount float64) (bool, error) {
	return amount >= CardMinAmount && amount <= CardMaxAmount, nil
}

func (s *ExternalCardStrategy) ProcessPayment(ctx context.Context, _ string, amount float64, cardToken string) (*PaymentResult, error) {
	switch {
	case amount < CardMinAmount:
		return &PaymentResult{
			Success:   false,
			ErrorCode: CodeAmountTooLow,
			Message:   fmt.Sprintf("amount %.2f below minimum %.2f", amount, CardMinAmount),
		}, nil
	case amount > CardMaxAmount:
		return &PaymentResult{
			Success:   false,
			ErrorCode: CodeAmountTooHigh,
			Message:   fmt.Sprintf("amount %.2f above maximum %.2f", amount, CardMaxAmount),
		}, nil
	}

	if !s.gateway.Available() {
		return &PaymentResult{
			Success:   false,
			ErrorCode: CodeServiceUnavailable,
			Message:   "card processor unavailable",
		}, nil
	}

	res, err := s.gateway.Charge(ctx, amount, cardToken)
	if err != nil {
		return nil, fmt.Errorf("gateway charge: %w", err)
	}
	if !res.Success {
		code := CodeCardDeclined
		if res.DeclineReason == "" {
			code = CodeProcessingError
		}
		return &PaymentResult{
			Success:   false,
			ErrorCode: code,
			Message:   res.DeclineReason,
		}, nil
	}
	return &PaymentResult{
		Success:       true,
		TransactionID: res.TransactionID,
		Message:       fmt.Sprintf("charged %.2f to card", amount),
	}, nil
}
