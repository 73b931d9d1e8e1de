package order

import (
	"time"

	"github.com/shopspring/decimal"

	domcart "example.com/coffee-shop/app/internal/domain/cart"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Order is a placed order. Number is the identifier shown to the customer;
// ID is the storage key.
type Order struct {
	ID        int64
	Number    int64
	UserID    int64
	Status    Status
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Items     []OrderItem
	CreatedAt time.Time
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int64
}

// FromLines builds a pending order from the cart lines that were paid for.
func FromLines(number, userID int64, lines []domcart.LineItem, createdAt time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrderItems
	}
	summary := domcart.Summarize(lines)
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return &Order{
		Number:    number,
		UserID:    userID,
		Status:    StatusPending,
		Subtotal:  summary.Subtotal,
		Tax:       summary.Tax,
		Total:     summary.Total,
		Items:     items,
		CreatedAt: createdAt,
	}, nil
}
