package order

import (
	"context"

	domorder "example.com/coffee-shop/app/internal/domain/order"
)

type Service struct {
	repo domorder.Repository
}

func NewService(repo domorder.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*domorder.Order, error) {
	return s.repo.List(ctx)
}

// ListForUser returns the order history of one customer, newest first as
// stored by the repository.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	if !status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Record stores an order that checkout has just paid for.
func (s *Service) Record(ctx context.Context, o *domorder.Order) error {
	_, err := s.repo.Create(ctx, o)
	return err
}
