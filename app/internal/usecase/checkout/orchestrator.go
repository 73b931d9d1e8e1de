package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	domcart "example.com/coffee-shop/app/internal/domain/cart"
	domcheckout "example.com/coffee-shop/app/internal/domain/checkout"
	domorder "example.com/coffee-shop/app/internal/domain/order"
	domuser "example.com/coffee-shop/app/internal/domain/user"
)

const (
	DefaultLoginRoute   = "/login"
	DefaultOrigin       = "/cart"
	DefaultLoginMessage = "Please login to complete your purchase"
)

// CartStore is the cart of one session as seen by checkout. Settle removes
// the charged lines and keeps anything added while payment was running.
type CartStore interface {
	Lines(ctx context.Context) ([]domcart.LineItem, error)
	Settle(ctx context.Context, charged []domcart.LineItem) error
}

// PaymentGateway performs the external payment call.
type PaymentGateway interface {
	Charge(ctx context.Context, req domcheckout.PaymentRequest) (domcheckout.PaymentResult, error)
}

// OrderRecorder receives every order that was paid for.
type OrderRecorder interface {
	Record(ctx context.Context, o *domorder.Order) error
}

// Observer is called on every state transition with the outcome known at
// that point.
type Observer func(state domcheckout.State, outcome domcheckout.Outcome)

// Attempt holds the checkout state of one cart session. Every orchestrator
// acting on the same cart must share it so that only one checkout is in
// flight at a time.
type Attempt struct {
	mu        sync.Mutex
	state     domcheckout.State
	cancel    context.CancelFunc
	abandoned bool
}

func NewAttempt() *Attempt {
	return &Attempt{state: domcheckout.StateIdle}
}

func (a *Attempt) State() domcheckout.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Abandon cancels a checkout that is waiting on payment. It reports whether
// there was one to cancel.
func (a *Attempt) Abandon() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != domcheckout.StateProcessing || a.cancel == nil {
		return false
	}
	a.abandoned = true
	a.cancel()
	return true
}

// begin moves the attempt to Processing. It returns false when another
// checkout already holds it.
func (a *Attempt) begin(cancel context.CancelFunc) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.CanStart() {
		return false
	}
	a.state = domcheckout.StateProcessing
	a.cancel = cancel
	a.abandoned = false
	return true
}

// commit stops accepting Abandon once payment has succeeded.
func (a *Attempt) commit() (abandoned bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.abandoned {
		return true
	}
	a.cancel = nil
	return false
}

func (a *Attempt) set(state domcheckout.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = state
	a.cancel = nil
	a.abandoned = false
}

func (a *Attempt) trySet(state domcheckout.State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.CanStart() {
		return false
	}
	a.state = state
	return true
}

type Option func(*Orchestrator)

func WithAttempt(a *Attempt) Option {
	return func(o *Orchestrator) { o.attempt = a }
}

func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

func WithOrderRecorders(recorders ...OrderRecorder) Option {
	return func(o *Orchestrator) { o.recorders = append(o.recorders, recorders...) }
}

func WithLoginRoute(route, message string) Option {
	return func(o *Orchestrator) {
		if route != "" {
			o.loginRoute = route
		}
		if message != "" {
			o.loginMessage = message
		}
	}
}

// WithPaymentTimeout bounds the payment call. Zero means no bound beyond the
// caller's context.
func WithPaymentTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator runs checkout for one cart: authentication gate, payment,
// then settling the charged lines.
type Orchestrator struct {
	cart     CartStore
	session  domuser.Session
	payments PaymentGateway

	attempt      *Attempt
	recorders    []OrderRecorder
	observer     Observer
	loginRoute   string
	loginMessage string
	timeout      time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

func NewOrchestrator(cart CartStore, session domuser.Session, payments PaymentGateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:         cart,
		session:      session,
		payments:     payments,
		loginRoute:   DefaultLoginRoute,
		loginMessage: DefaultLoginMessage,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.attempt == nil {
		o.attempt = NewAttempt()
	}
	return o
}

func (o *Orchestrator) State() domcheckout.State {
	return o.attempt.State()
}

func (o *Orchestrator) Abandon() bool {
	return o.attempt.Abandon()
}

// Checkout places an order for the current cart. origin is the route the
// user should return to after signing in; it defaults to the cart page.
//
// A returned error means the attempt did not run to an outcome: the cart was
// empty, could not be read, or the attempt was abandoned.
func (o *Orchestrator) Checkout(ctx context.Context, origin string) (domcheckout.Outcome, error) {
	if origin == "" {
		origin = DefaultOrigin
	}

	if !o.session.IsAuthenticated() {
		if !o.attempt.trySet(domcheckout.StateAwaitingAuth) {
			return o.inFlight(), nil
		}
		out := domcheckout.RequiresAuthentication(o.loginRoute, origin, o.loginMessage)
		o.notify(domcheckout.StateAwaitingAuth, out)
		return out, nil
	}
	identity, _ := o.session.CurrentUser()

	payCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !o.attempt.begin(cancel) {
		return o.inFlight(), nil
	}

	lines, err := o.cart.Lines(payCtx)
	if err != nil {
		o.attempt.set(domcheckout.StateIdle)
		return domcheckout.Outcome{}, err
	}
	if len(lines) == 0 {
		o.attempt.set(domcheckout.StateIdle)
		return domcheckout.Outcome{}, domcheckout.ErrEmptyCart
	}

	o.notify(domcheckout.StateProcessing, domcheckout.Processing())

	req := domcheckout.PaymentRequest{
		UserID:  identity.ID,
		Lines:   lines,
		Summary: domcart.Summarize(lines),
	}
	result, err := o.charge(payCtx, req)

	if ctx.Err() != nil || o.attempt.commit() {
		o.attempt.set(domcheckout.StateIdle)
		o.logger.Info("checkout abandoned", zap.Int64("user_id", identity.ID))
		o.notify(domcheckout.StateIdle, domcheckout.Outcome{})
		return domcheckout.Outcome{}, domcheckout.ErrCheckoutAbandoned
	}
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "payment timed out"
		}
		return o.fail(identity.ID, reason), nil
	}
	if !result.Succeeded() {
		return o.fail(identity.ID, result.Reason()), nil
	}

	// Payment went through; the remaining steps must not be cut short by the
	// caller going away.
	done := context.WithoutCancel(ctx)
	if err := o.cart.Settle(done, lines); err != nil {
		o.logger.Error("settle cart after payment",
			zap.Int64("order_id", result.OrderID),
			zap.Error(err))
	}
	o.record(done, identity.ID, result.OrderID, lines)

	o.attempt.set(domcheckout.StateCompleted)
	out := domcheckout.Success(result.OrderID)
	o.logger.Info("checkout completed",
		zap.Int64("user_id", identity.ID),
		zap.Int64("order_id", result.OrderID),
		zap.String("total", req.Summary.Total.String()))
	o.notify(domcheckout.StateCompleted, out)
	return out, nil
}

func (o *Orchestrator) charge(ctx context.Context, req domcheckout.PaymentRequest) (domcheckout.PaymentResult, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return o.payments.Charge(ctx, req)
}

func (o *Orchestrator) fail(userID int64, reason string) domcheckout.Outcome {
	o.attempt.set(domcheckout.StateIdle)
	o.logger.Warn("checkout payment failed",
		zap.Int64("user_id", userID),
		zap.String("reason", reason))
	out := domcheckout.Failed(reason)
	o.notify(domcheckout.StateIdle, out)
	return out
}

func (o *Orchestrator) inFlight() domcheckout.Outcome {
	o.logger.Info("checkout already in flight, request ignored")
	return domcheckout.InFlight()
}

func (o *Orchestrator) record(ctx context.Context, userID, orderID int64, lines []domcart.LineItem) {
	if len(o.recorders) == 0 {
		return
	}
	order, err := domorder.FromLines(orderID, userID, lines, o.now())
	if err != nil {
		o.logger.Error("build order", zap.Int64("order_id", orderID), zap.Error(err))
		return
	}
	for _, rec := range o.recorders {
		if err := rec.Record(ctx, order); err != nil {
			o.logger.Error("record order",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
	}
}

func (o *Orchestrator) notify(state domcheckout.State, out domcheckout.Outcome) {
	if o.observer != nil {
		o.observer(state, out)
	}
}
