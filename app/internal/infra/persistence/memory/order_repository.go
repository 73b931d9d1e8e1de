package memory

import (
	"context"
	"sync"

	domorder "example.com/coffee-shop/app/internal/domain/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	nextID int64
	orders []*domorder.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{nextID: 1}
}

func (r *OrderRepository) Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	if len(o.Items) == 0 {
		return nil, domorder.ErrEmptyOrderItems
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneOrder(o)
	stored.ID = r.nextID
	r.nextID++
	for i := range stored.Items {
		stored.Items[i].ID = int64(i + 1)
		stored.Items[i].OrderID = stored.ID
	}
	r.orders = append(r.orders, stored)
	return cloneOrder(stored), nil
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	return r.filter(func(*domorder.Order) bool { return true }), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	return r.filter(func(o *domorder.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return nil, domorder.ErrOrderNotFound
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			o.Status = status
			return cloneOrder(o), nil
		}
	}
	return nil, domorder.ErrOrderNotFound
}

func (r *OrderRepository) filter(keep func(*domorder.Order) bool) []*domorder.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domorder.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		if keep(r.orders[i]) {
			out = append(out, cloneOrder(r.orders[i]))
		}
	}
	return out
}

func cloneOrder(o *domorder.Order) *domorder.Order {
	c := *o
	c.Items = make([]domorder.OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}
