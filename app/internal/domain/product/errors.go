package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("product name and category are required")
	ErrNegativePrice   = errors.New("product price must not be negative")
)
