package catalog

import (
	"context"

	"go.uber.org/zap"

	dom "example.com/coffee-shop/app/internal/domain/product"
)

// AllCategories is the category tab that lists every product.
const AllCategories = "all"

type Service struct {
	repo     dom.Repository
	fallback []*dom.Product
	logger   *zap.Logger
}

// NewService builds a catalog over repo. When repo fails or has no products,
// reads fall back to dom.SampleCatalog.
func NewService(repo dom.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		fallback: dom.SampleCatalog(),
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, category string) ([]*dom.Product, error) {
	filter := dom.ListFilter{OnlyActive: true}
	if category != "" && category != AllCategories {
		filter.Category = category
	}

	products, err := s.repo.List(ctx, dom.ListFilter{OnlyActive: true})
	if err != nil || len(products) == 0 {
		if err != nil {
			s.logger.Warn("catalog unavailable, serving sample catalog", zap.Error(err))
		} else {
			s.logger.Warn("catalog empty, serving sample catalog")
		}
		products = s.fallback
	}
	return filterProducts(products, filter), nil
}

// Categories returns "all" followed by the distinct categories of the listed
// products in first-seen order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.List(ctx, AllCategories)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	categories := []string{AllCategories}
	for _, p := range products {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	return categories, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return p, nil
	}
	if !s.degraded(ctx) {
		return nil, err
	}
	for _, fp := range s.fallback {
		if fp.ID == id {
			cloned := *fp
			return &cloned, nil
		}
	}
	return nil, dom.ErrProductNotFound
}

// degraded reports whether reads are currently served from the fallback.
func (s *Service) degraded(ctx context.Context) bool {
	products, err := s.repo.List(ctx, dom.ListFilter{OnlyActive: true})
	return err != nil || len(products) == 0
}

func (s *Service) Create(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

// Update applies the non-zero fields of p to the stored product.
func (s *Service) Update(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	existed, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if p.Name != "" {
		existed.Name = p.Name
	}
	if p.Description != "" {
		existed.Description = p.Description
	}
	if !p.Price.IsZero() {
		existed.Price = p.Price
	}
	if p.ImageURL != "" {
		existed.ImageURL = p.ImageURL
	}
	if p.Category != "" {
		existed.Category = p.Category
	}
	existed.IsActive = p.IsActive

	if err := existed.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, existed)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func filterProducts(products []*dom.Product, filter dom.ListFilter) []*dom.Product {
	result := make([]*dom.Product, 0, len(products))
	for _, p := range products {
		if filter.OnlyActive && !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		result = append(result, p)
	}
	return result
}
