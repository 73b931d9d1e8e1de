package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	domcheckout "example.com/coffee-shop/app/internal/domain/checkout"
	checkoutuc "example.com/coffee-shop/app/internal/usecase/checkout"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Breaker guards a gateway with a circuit breaker. Declined payments and
// cancelled calls do not count as gateway failures.
type Breaker struct {
	next checkoutuc.PaymentGateway
	cb   *gobreaker.CircuitBreaker[domcheckout.PaymentResult]
}

func NewBreaker(next checkoutuc.PaymentGateway, cfg BreakerConfig, logger *zap.Logger) *Breaker {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:        "payment",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[domcheckout.PaymentResult](settings),
	}
}

func (b *Breaker) Charge(ctx context.Context, req domcheckout.PaymentRequest) (domcheckout.PaymentResult, error) {
	res, err := b.cb.Execute(func() (domcheckout.PaymentResult, error) {
		return b.next.Charge(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domcheckout.PaymentResult{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return res, err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
