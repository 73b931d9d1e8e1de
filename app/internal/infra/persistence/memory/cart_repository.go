package memory

import (
	"context"
	"sync"

	domcart "example.com/coffee-shop/app/internal/domain/cart"
)

type CartRepository struct {
	mu    sync.RWMutex
	carts map[string][]domcart.LineItem
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string][]domcart.LineItem)}
}

func (r *CartRepository) Load(ctx context.Context, sessionID string) ([]domcart.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneLines(r.carts[sessionID]), nil
}

func (r *CartRepository) Save(ctx context.Context, sessionID string, items []domcart.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[sessionID] = cloneLines(items)
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

func cloneLines(items []domcart.LineItem) []domcart.LineItem {
	if items == nil {
		return nil
	}
	out := make([]domcart.LineItem, len(items))
	copy(out, items)
	return out
}
