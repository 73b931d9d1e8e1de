package cart

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	domcart "example.com/coffee-shop/app/internal/domain/cart"
	domproduct "example.com/coffee-shop/app/internal/domain/product"
)

type CartRepository interface {
	domcart.Repository
}

type ProductLookup interface {
	GetByID(ctx context.Context, id int64) (*domproduct.Product, error)
}

// Service owns the carts of all cart sessions. Each mutation loads the
// session's snapshot, applies the change and saves it while holding the
// session's lock.
type Service struct {
	repo    CartRepository
	catalog ProductLookup
	locks   keyedMutex
	sfg     singleflight.Group
	logger  *zap.Logger
}

func NewService(repo CartRepository, catalog ProductLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*domcart.Cart, error) {
	// The shared load must not fail for every waiter when the caller that
	// started it goes away.
	ch := s.sfg.DoChan(sessionID, func() (interface{}, error) {
		return s.repo.Load(context.WithoutCancel(ctx), sessionID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return domcart.FromItems(res.Val.([]domcart.LineItem)), nil
	}
}

// AddItem adds one unit of an active catalog product.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID int64) (*domcart.Cart, error) {
	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domproduct.ErrProductNotFound
	}
	return s.mutate(ctx, sessionID, func(c *domcart.Cart) {
		c.AddItem(*p)
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID int64) (*domcart.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domcart.Cart) {
		c.RemoveItem(productID)
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int64) (*domcart.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domcart.Cart) {
		c.UpdateQuantity(productID, quantity)
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.repo.Delete(ctx, sessionID)
}

// Settle takes charged lines out of the cart after payment. Units added while
// the payment ran are kept.
func (s *Service) Settle(ctx context.Context, sessionID string, charged []domcart.LineItem) (*domcart.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domcart.Cart) {
		c.Subtract(charged)
	})
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(c *domcart.Cart)) (*domcart.Cart, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	items, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c := domcart.FromItems(items)
	fn(c)

	if c.IsEmpty() {
		err = s.repo.Delete(ctx, sessionID)
	} else {
		err = s.repo.Save(ctx, sessionID, c.Items())
	}
	if err != nil {
		s.logger.Error("save cart", zap.String("cart_session", sessionID), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// Bind returns the cart of one session in the shape checkout consumes.
func (s *Service) Bind(sessionID string) *SessionCart {
	return &SessionCart{svc: s, sessionID: sessionID}
}

type SessionCart struct {
	svc       *Service
	sessionID string
}

func (c *SessionCart) Lines(ctx context.Context) ([]domcart.LineItem, error) {
	cart, err := c.svc.Get(ctx, c.sessionID)
	if err != nil {
		return nil, err
	}
	return cart.Items(), nil
}

func (c *SessionCart) Settle(ctx context.Context, charged []domcart.LineItem) error {
	_, err := c.svc.Settle(ctx, c.sessionID, charged)
	return err
}
