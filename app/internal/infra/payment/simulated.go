package payment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domcheckout "example.com/coffee-shop/app/internal/domain/checkout"
)

const (
	DefaultDelay = 1500 * time.Millisecond

	minOrderID = 1000
	maxOrderID = 9999
)

// Simulated approves every charge after a fixed delay and assigns a random
// four-digit order number. Charges whose total exceeds DeclineAbove are
// declined; a zero limit declines nothing.
type Simulated struct {
	Delay        time.Duration
	DeclineAbove decimal.Decimal

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulated(delay time.Duration, declineAbove decimal.Decimal) *Simulated {
	return &Simulated{
		Delay:        delay,
		DeclineAbove: declineAbove,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulated) Charge(ctx context.Context, req domcheckout.PaymentRequest) (domcheckout.PaymentResult, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domcheckout.PaymentResult{}, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return domcheckout.PaymentResult{}, err
	}

	if s.DeclineAbove.IsPositive() && req.Summary.Total.GreaterThan(s.DeclineAbove) {
		return domcheckout.PaymentFailed("amount exceeds card limit"), nil
	}
	return domcheckout.PaymentSucceeded(s.orderID()), nil
}

func (s *Simulated) orderID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return int64(minOrderID + s.rng.Intn(maxOrderID-minOrderID+1))
}
