package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	domcheckout "example.com/coffee-shop/app/internal/domain/checkout"
	domuser "example.com/coffee-shop/app/internal/domain/user"
)

// DefaultAttemptTTL is how long a finished attempt is kept so its state can
// still be read.
const DefaultAttemptTTL = 30 * time.Minute

// Registry keeps one Attempt per cart session while a checkout runs, and for
// a while after it ends in AwaitingAuth or Completed. Reads never create
// entries.
type Registry struct {
	mu        sync.Mutex
	attempts  map[string]*registryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type registryEntry struct {
	attempt *Attempt
	refs    int
	seen    time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultAttemptTTL
	}
	return &Registry{
		attempts: make(map[string]*registryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// acquire returns the attempt of a session, creating it when needed, and
// pins it until release.
func (r *Registry) acquire(sessionID string) *Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)
	e, ok := r.attempts[sessionID]
	if !ok {
		e = &registryEntry{attempt: NewAttempt()}
		r.attempts[sessionID] = e
	}
	e.refs++
	e.seen = now
	return e.attempt
}

// release unpins an attempt and drops it when it went back to Idle.
func (r *Registry) release(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.attempts[sessionID]
	if !ok {
		return
	}
	e.refs--
	e.seen = r.now()
	if e.refs == 0 && e.attempt.State() == domcheckout.StateIdle {
		delete(r.attempts, sessionID)
	}
}

func (r *Registry) Lookup(sessionID string) (*Attempt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.attempts[sessionID]
	if !ok {
		return nil, false
	}
	return e.attempt, true
}

// Forget drops the attempt of a session unless a checkout is in flight.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.attempts[sessionID]; ok && e.refs == 0 && e.attempt.State() != domcheckout.StateProcessing {
		delete(r.attempts, sessionID)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

// sweepLocked drops unpinned attempts not used for ttl, at most once per ttl.
func (r *Registry) sweepLocked(now time.Time) {
	if now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	for id, e := range r.attempts {
		if e.refs == 0 && now.Sub(e.seen) >= r.ttl {
			delete(r.attempts, id)
		}
	}
}

type Config struct {
	LoginRoute     string
	LoginMessage   string
	PaymentTimeout time.Duration
	AttemptTTL     time.Duration
}

// Service builds orchestrators for cart sessions so that requests on the same
// cart share one in-flight guard.
type Service struct {
	registry  *Registry
	payments  PaymentGateway
	recorders []OrderRecorder
	cfg       Config
	logger    *zap.Logger
}

func NewService(payments PaymentGateway, recorders []OrderRecorder, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  NewRegistry(cfg.AttemptTTL),
		payments:  payments,
		recorders: recorders,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *Service) orchestrator(sessionID string, attempt *Attempt, cart CartStore, session domuser.Session) *Orchestrator {
	return NewOrchestrator(cart, session, s.payments,
		WithAttempt(attempt),
		WithOrderRecorders(s.recorders...),
		WithLoginRoute(s.cfg.LoginRoute, s.cfg.LoginMessage),
		WithPaymentTimeout(s.cfg.PaymentTimeout),
		WithLogger(s.logger.With(zap.String("cart_session", sessionID))),
	)
}

func (s *Service) Checkout(ctx context.Context, sessionID string, cart CartStore, session domuser.Session, origin string) (domcheckout.Outcome, error) {
	attempt := s.registry.acquire(sessionID)
	defer s.registry.release(sessionID)
	return s.orchestrator(sessionID, attempt, cart, session).Checkout(ctx, origin)
}

func (s *Service) Abandon(sessionID string) bool {
	a, ok := s.registry.Lookup(sessionID)
	if !ok {
		return false
	}
	return a.Abandon()
}

// State reports Idle for sessions with no attempt on record.
func (s *Service) State(sessionID string) domcheckout.State {
	a, ok := s.registry.Lookup(sessionID)
	if !ok {
		return domcheckout.StateIdle
	}
	return a.State()
}

// Reset forgets a finished attempt, used when the cart is cleared.
func (s *Service) Reset(sessionID string) {
	s.registry.Forget(sessionID)
}
