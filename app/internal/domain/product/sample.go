package product

import "github.com/shopspring/decimal"

// SampleCatalog is served when the catalog backend is unreachable or empty.
func SampleCatalog() []*Product {
	return []*Product{
		{
			ID:          1,
			Name:        "Espresso",
			Description: "Strong, concentrated coffee served in a small cup.",
			Price:       decimal.RequireFromString("2.99"),
			ImageURL:    "https://images.unsplash.com/photo-1510707577719-ae7afe080542",
			Category:    "coffee",
			IsActive:    true,
		},
		{
			ID:          2,
			Name:        "Cappuccino",
			Description: "Equal parts espresso, steamed milk, and milk foam.",
			Price:       decimal.RequireFromString("4.50"),
			ImageURL:    "https://images.unsplash.com/photo-1572442388796-11668a67e53d",
			Category:    "coffee",
			IsActive:    true,
		},
		{
			ID:          3,
			Name:        "Blueberry Muffin",
			Description: "Moist muffin loaded with sweet blueberries.",
			Price:       decimal.RequireFromString("3.25"),
			ImageURL:    "https://images.unsplash.com/photo-1607958996333-41215c43da89",
			Category:    "pastry",
			IsActive:    true,
		},
		{
			ID:          4,
			Name:        "Avocado Toast",
			Description: "Toasted artisan bread topped with fresh avocado.",
			Price:       decimal.RequireFromString("7.95"),
			ImageURL:    "https://images.unsplash.com/photo-1603046891744-56236a46b714",
			Category:    "food",
			IsActive:    true,
		},
		{
			ID:          5,
			Name:        "Chai Latte",
			Description: "Spiced tea with steamed milk.",
			Price:       decimal.RequireFromString("4.25"),
			ImageURL:    "https://images.unsplash.com/photo-1594631252845-29fc4cc8cde9",
			Category:    "tea",
			IsActive:    true,
		},
		{
			ID:          6,
			Name:        "Croissant",
			Description: "Buttery, flaky pastry shaped into a crescent.",
			Price:       decimal.RequireFromString("2.95"),
			ImageURL:    "https://images.unsplash.com/photo-1555507036-ab1f4038808a",
			Category:    "pastry",
			IsActive:    true,
		},
	}
}
