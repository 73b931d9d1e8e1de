package order

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domorder "example.com/coffee-shop/app/internal/domain/order"
)

type mockOrderRepository struct {
	orders    map[int64]*domorder.Order
	updated   map[int64]*domorder.Order
	listErr   error
	getErr    error
	updateErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders:  make(map[int64]*domorder.Order),
		updated: make(map[int64]*domorder.Order),
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	cloned := *o
	cloned.ID = int64(len(m.orders) + 1)
	m.orders[cloned.ID] = &cloned
	return &cloned, nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]*domorder.Order, 0, len(m.orders))
	for _, o := range m.orders {
		cloned := *o
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*domorder.Order, 0)
	for _, o := range all {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if o, ok := m.orders[id]; ok {
		cloned := *o
		return &cloned, nil
	}
	return nil, domorder.ErrOrderNotFound
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	o.Status = status
	m.updated[id] = o
	cloned := *o
	return &cloned, nil
}

func latteOrder(id, userID int64) *domorder.Order {
	return &domorder.Order{
		ID:       id,
		Number:   4821,
		UserID:   userID,
		Status:   domorder.StatusPending,
		Subtotal: decimal.RequireFromString("4.25"),
		Tax:      decimal.RequireFromString("0.2975"),
		Total:    decimal.RequireFromString("4.5475"),
		Items: []domorder.OrderItem{
			{ID: 1, OrderID: id, ProductID: 5, Name: "Chai Latte", Price: decimal.RequireFromString("4.25"), Quantity: 1},
		},
		CreatedAt: time.Now(),
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := NewService(newMockOrderRepository())

	o, err := svc.GetByID(context.Background(), 999)

	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
	require.Nil(t, o)
}

func TestGetOrder_Found(t *testing.T) {
	repo := newMockOrderRepository()
	repo.orders[1] = latteOrder(1, 100)
	svc := NewService(repo)

	o, err := svc.GetByID(context.Background(), 1)

	require.NoError(t, err)
	require.Equal(t, int64(4821), o.Number)
	require.Equal(t, "4.55", o.Total.StringFixed(2))
	require.Len(t, o.Items, 1)
	require.Equal(t, "Chai Latte", o.Items[0].Name)
}

func TestListForUser(t *testing.T) {
	repo := newMockOrderRepository()
	repo.orders[1] = latteOrder(1, 100)
	repo.orders[2] = latteOrder(2, 200)
	repo.orders[3] = latteOrder(3, 100)
	svc := NewService(repo)

	orders, err := svc.ListForUser(context.Background(), 100)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, int64(1), orders[0].ID)
	require.Equal(t, int64(3), orders[1].ID)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestListOrders_RepositoryError(t *testing.T) {
	repo := newMockOrderRepository()
	repo.listErr = errors.New("db down")
	svc := NewService(repo)

	orders, err := svc.List(context.Background())

	require.EqualError(t, err, "db down")
	require.Nil(t, orders)
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	tests := []struct {
		name   string
		status domorder.Status
	}{
		{name: "Empty status", status: domorder.Status("")},
		{name: "Unknown status", status: domorder.Status("shipped")},
		{name: "Uppercase pending", status: domorder.Status("PENDING")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockOrderRepository()
			repo.orders[1] = latteOrder(1, 100)
			svc := NewService(repo)

			o, err := svc.UpdateStatus(context.Background(), 1, tt.status)

			require.ErrorIs(t, err, domorder.ErrInvalidStatus)
			require.Nil(t, o)
			require.Equal(t, domorder.StatusPending, repo.orders[1].Status)
			require.Empty(t, repo.updated)
		})
	}
}

func TestUpdateOrderStatus_Valid(t *testing.T) {
	statuses := []domorder.Status{
		domorder.StatusPending,
		domorder.StatusProcessing,
		domorder.StatusCompleted,
		domorder.StatusCancelled,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			repo := newMockOrderRepository()
			repo.orders[1] = latteOrder(1, 100)
			svc := NewService(repo)

			o, err := svc.UpdateStatus(context.Background(), 1, status)

			require.NoError(t, err)
			require.Equal(t, status, o.Status)
			require.Equal(t, status, repo.orders[1].Status)
		})
	}
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewService(repo)

	o, err := svc.UpdateStatus(context.Background(), 999, domorder.StatusCompleted)

	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
	require.Nil(t, o)
}

func TestRecord(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewService(repo)

	require.NoError(t, svc.Record(context.Background(), latteOrder(0, 100)))

	orders, err := svc.ListForUser(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, int64(4821), orders[0].Number)
}
