package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	dom "example.com/coffee-shop/app/internal/domain/product"
)

type mockProductRepository struct {
	products  map[int64]*dom.Product
	order     []int64
	nextID    int64
	listErr   error
	getErr    error
	updated   *dom.Product
	deletedID int64
}

func newMockProductRepository(products ...*dom.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[int64]*dom.Product), nextID: 100}
	for _, p := range products {
		m.products[p.ID] = p
		m.order = append(m.order, p.ID)
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	m.nextID++
	p.ID = m.nextID
	m.products[p.ID] = p
	m.order = append(m.order, p.ID)
	return p, nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	if _, ok := m.products[p.ID]; !ok {
		return nil, dom.ErrProductNotFound
	}
	m.products[p.ID] = p
	m.updated = p
	return p, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return dom.ErrProductNotFound
	}
	delete(m.products, id)
	m.deletedID = id
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, ok := m.products[id]; ok {
		cloned := *p
		return &cloned, nil
	}
	return nil, dom.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*dom.Product
	for _, id := range m.order {
		p, ok := m.products[id]
		if !ok {
			continue
		}
		if filter.OnlyActive && !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func latte() *dom.Product {
	return &dom.Product{ID: 10, Name: "Latte", Price: decimal.RequireFromString("4.75"), Category: "coffee", IsActive: true}
}

func scone() *dom.Product {
	return &dom.Product{ID: 11, Name: "Scone", Price: decimal.RequireFromString("3.10"), Category: "pastry", IsActive: true}
}

func TestList_FromRepository(t *testing.T) {
	inactive := &dom.Product{ID: 12, Name: "Old", Price: decimal.RequireFromString("1"), Category: "tea", IsActive: false}
	svc := NewService(newMockProductRepository(latte(), scone(), inactive), nil)

	products, err := svc.List(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Latte", products[0].Name)
}

func TestList_ByCategory(t *testing.T) {
	svc := NewService(newMockProductRepository(latte(), scone()), nil)

	products, err := svc.List(context.Background(), "pastry")
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Scone", products[0].Name)

	products, err = svc.List(context.Background(), "tea")
	require.NoError(t, err)
	require.Empty(t, products, "an empty category must not trigger the sample catalog")

	products, err = svc.List(context.Background(), AllCategories)
	require.NoError(t, err)
	require.Len(t, products, 2)
}

func TestList_EmptyRepository_ServesSampleCatalog(t *testing.T) {
	svc := NewService(newMockProductRepository(), nil)

	products, err := svc.List(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, products, 6)
	require.Equal(t, "Espresso", products[0].Name)
	require.True(t, decimal.RequireFromString("2.99").Equal(products[0].Price))
}

func TestList_RepositoryError_ServesSampleCatalog(t *testing.T) {
	repo := newMockProductRepository(latte())
	repo.listErr = errors.New("connection refused")
	svc := NewService(repo, nil)

	products, err := svc.List(context.Background(), "pastry")

	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		require.Equal(t, "pastry", p.Category)
	}
}

func TestCategories(t *testing.T) {
	svc := NewService(newMockProductRepository(), nil)

	categories, err := svc.Categories(context.Background())

	require.NoError(t, err)
	require.Equal(t, []string{"all", "coffee", "pastry", "food", "tea"}, categories)
}

func TestGetByID_FromRepository(t *testing.T) {
	svc := NewService(newMockProductRepository(latte()), nil)

	p, err := svc.GetByID(context.Background(), 10)

	require.NoError(t, err)
	require.Equal(t, "Latte", p.Name)
}

func TestGetByID_NotFoundWhenCatalogHealthy(t *testing.T) {
	svc := NewService(newMockProductRepository(latte()), nil)

	_, err := svc.GetByID(context.Background(), 1)

	require.ErrorIs(t, err, dom.ErrProductNotFound)
}

func TestGetByID_DegradedUsesSampleCatalog(t *testing.T) {
	repo := newMockProductRepository()
	repo.getErr = errors.New("connection refused")
	repo.listErr = errors.New("connection refused")
	svc := NewService(repo, nil)

	p, err := svc.GetByID(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "Cappuccino", p.Name)

	_, err = svc.GetByID(context.Background(), 77)
	require.ErrorIs(t, err, dom.ErrProductNotFound)
}

func TestCreate_Validates(t *testing.T) {
	tests := []struct {
		name    string
		product *dom.Product
		wantErr error
	}{
		{
			name:    "Missing name",
			product: &dom.Product{Category: "coffee", Price: decimal.RequireFromString("1")},
			wantErr: dom.ErrInvalidProduct,
		},
		{
			name:    "Missing category",
			product: &dom.Product{Name: "Mocha", Price: decimal.RequireFromString("1")},
			wantErr: dom.ErrInvalidProduct,
		},
		{
			name:    "Negative price",
			product: &dom.Product{Name: "Mocha", Category: "coffee", Price: decimal.RequireFromString("-1")},
			wantErr: dom.ErrNegativePrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMockProductRepository(), nil)
			_, err := svc.Create(context.Background(), tt.product)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreate_Succeeds(t *testing.T) {
	svc := NewService(newMockProductRepository(), nil)

	p, err := svc.Create(context.Background(), &dom.Product{
		Name:     "Mocha",
		Category: "coffee",
		Price:    decimal.RequireFromString("4.95"),
		IsActive: true,
	})

	require.NoError(t, err)
	require.NotZero(t, p.ID)
}

func TestUpdate_MergesNonZeroFields(t *testing.T) {
	repo := newMockProductRepository(latte())
	svc := NewService(repo, nil)

	p, err := svc.Update(context.Background(), &dom.Product{
		ID:       10,
		Price:    decimal.RequireFromString("5.25"),
		IsActive: true,
	})

	require.NoError(t, err)
	require.Equal(t, "Latte", p.Name)
	require.Equal(t, "coffee", p.Category)
	require.True(t, decimal.RequireFromString("5.25").Equal(p.Price))
	require.Same(t, repo.updated, p)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(newMockProductRepository(), nil)

	_, err := svc.Update(context.Background(), &dom.Product{ID: 404, Name: "x"})

	require.ErrorIs(t, err, dom.ErrProductNotFound)
}

func TestDelete(t *testing.T) {
	repo := newMockProductRepository(latte())
	svc := NewService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), 10))
	require.Equal(t, int64(10), repo.deletedID)
	require.ErrorIs(t, svc.Delete(context.Background(), 10), dom.ErrProductNotFound)
}
