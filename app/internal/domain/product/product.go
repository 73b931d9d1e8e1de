package product

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Category    string
	IsActive    bool
}

// Validate checks the fields a catalog write must carry.
func (p *Product) Validate() error {
	if p.Name == "" || p.Category == "" {
		return ErrInvalidProduct
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

type ListFilter struct {
	Category   string
	OnlyActive bool
}
