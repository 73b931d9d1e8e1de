package memory

import (
	"context"
	"sync"

	domproduct "example.com/coffee-shop/app/internal/domain/product"
)

type ProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products []*domproduct.Product
}

// NewProductRepository seeds the repository with the given products.
func NewProductRepository(seed ...*domproduct.Product) *ProductRepository {
	r := &ProductRepository{nextID: 1}
	for _, p := range seed {
		c := *p
		r.products = append(r.products, &c)
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *ProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *p
	c.ID = r.nextID
	r.nextID++
	r.products = append(r.products, &c)
	out := c
	return &out, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.products {
		if existing.ID == p.ID {
			c := *p
			r.products[i] = &c
			out := c
			return &out, nil
		}
	}
	return nil, domproduct.ErrProductNotFound
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.products {
		if existing.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return domproduct.ErrProductNotFound
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, domproduct.ErrProductNotFound
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domproduct.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.OnlyActive && !p.IsActive {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	return out, nil
}
