package service

import (
	"context"
	"fmt"

	"campusmeal/internal/model"
)

// PaymentResult codes for reported (non-fatal) payment failures.
const (
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeAmountTooLow       = "AMOUNT_TOO_LOW"
	CodeAmountTooHigh      = "AMOUNT_TOO_HIGH"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeCardDeclined       = "CARD_DECLINED"
	CodeProcessingError    = "PROCESSING_ERROR"
)

// PaymentResult is the structured outcome of a payment attempt. A
// declined payment is a result with Success=false, not an error; errors
// are reserved for infrastructure failures.
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message,omitempty"`
	ErrorCode     string `json:"error_code,omitempty"`
}

// PaymentStrategy executes a charge for one payment method.
type PaymentStrategy interface {
	ProcessPayment(ctx context.Context, userID string, amount float64, cardToken string) (*PaymentResult, error)
	CanPay(ctx context.Context, userID string, amount float64) (bool, error)
	Available() bool
}

// PaymentStrategies selects the strategy for an order's fixed payment
// method. The set of methods is closed; unknown methods fail fast.
type PaymentStrategies struct {
	credit *StudentCreditStrategy
	card   *ExternalCardStrategy
}

func NewPaymentStrategies(credit *StudentCreditStrategy, card *ExternalCardStrategy) *PaymentStrategies {
	return &PaymentStrategies{credit: credit, card: card}
}

func (p *PaymentStrategies) ForMethod(method string) (PaymentStrategy, error) {
	switch method {
	case model.PaymentMethodStudentCredit:
		return p.credit, nil
	case model.PaymentMethodExternalCard:
		return p.card, nil
	default:
		return nil, fmt.Errorf("unsupported payment method: %s", method)
	}
}
