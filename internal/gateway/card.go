// Package gateway holds the simulated external card processor used in
// place of a real acquiring integration.
package gateway

import (
	"context"
	"math/rand"
	"time"

	"campusmeal/internal/model"
	"campusmeal/internal/service"
)

// SimulatedCardGateway approves most charges after a short processing
// delay and declines a small random fraction, mimicking an external
// processor's latency and failure profile.
type SimulatedCardGateway struct {
	declineRate float64
	delay       time.Duration
}

func NewSimulatedCardGateway() *SimulatedCardGateway {
	return &SimulatedCardGateway{
		declineRate: 0.05,
		delay:       200 * time.Millisecond,
	}
}

func (g *SimulatedCardGateway) Available() bool { return true }

func (g *SimulatedCardGateway) Charge(ctx context.Context, amount float64, cardToken string) (*service.ChargeResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(g.delay):
	}

	if rand.Float64() < g.declineRate {
		return &service.ChargeResult{
			Success:       false,
			DeclineReason: "card declined by issuer",
		}, nil
	}
	return &service.ChargeResult{
		Success:       true,
		TransactionID: model.NewID(),
	}, nil
}
