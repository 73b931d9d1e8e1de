package cart

import (
	"math"
	"sync"

	"github.com/shopspring/decimal"

	domproduct "example.com/coffee-shop/app/internal/domain/product"
)

var (
	// TaxRate is the surcharge shown on the order summary.
	TaxRate       = decimal.RequireFromString("0.07")
	taxMultiplier = decimal.RequireFromString("1.07")
)

// LineItem is one product in the cart together with the product details
// captured when it was first added.
type LineItem struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    string          `json:"image_url"`
	Quantity    int64           `json:"quantity"`
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

type Summary struct {
	TotalItems int64
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// Cart holds at most one line per product, in first-add order. Totals are
// always derived from the lines. A Cart is safe for concurrent use.
type Cart struct {
	mu    sync.RWMutex
	lines map[int64]*LineItem
	order []int64
}

func New() *Cart {
	return &Cart{lines: make(map[int64]*LineItem)}
}

// FromItems rebuilds a cart from a persisted snapshot. Repeated product ids are
// merged and lines with a quantity below one are dropped.
func FromItems(items []LineItem) *Cart {
	c := New()
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if existing, ok := c.lines[item.ProductID]; ok {
			existing.Quantity += item.Quantity
			continue
		}
		line := item
		c.lines[item.ProductID] = &line
		c.order = append(c.order, item.ProductID)
	}
	return c
}

// AddItem increments the line for p, or appends a new line with quantity 1.
func (c *Cart) AddItem(p domproduct.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.lines[p.ID]; ok {
		line.Quantity++
		return
	}
	c.lines[p.ID] = &LineItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.Price,
		ImageURL:    p.ImageURL,
		Quantity:    1,
	}
	c.order = append(c.order, p.ID)
}

func (c *Cart) RemoveItem(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (c *Cart) UpdateQuantity(productID int64, quantity int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[productID]
	if !ok {
		return
	}
	if quantity <= 0 {
		c.removeLocked(productID)
		return
	}
	line.Quantity = quantity
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[int64]*LineItem)
	c.order = nil
}

// Subtract takes the quantities of lines out of the cart, removing lines that
// drop below one. Units added after lines was read stay in the cart.
func (c *Cart) Subtract(lines []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range lines {
		line, ok := c.lines[l.ProductID]
		if !ok {
			continue
		}
		line.Quantity -= l.Quantity
		if line.Quantity < 1 {
			c.removeLocked(l.ProductID)
		}
	}
}

func (c *Cart) removeLocked(productID int64) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.itemsLocked()
}

func (c *Cart) itemsLocked() []LineItem {
	items := make([]LineItem, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, *c.lines[id])
	}
	return items
}

func (c *Cart) Item(productID int64) (LineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	line, ok := c.lines[productID]
	if !ok {
		return LineItem{}, false
	}
	return *line, true
}

func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

func (c *Cart) TotalItems() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return TotalItems(c.itemsLocked())
}

func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return TotalPrice(c.itemsLocked())
}

// Summary computes all totals from a single consistent view of the lines.
func (c *Cart) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Summarize(c.itemsLocked())
}

func TotalItems(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func TotalPrice(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Summarize applies the tax as subtotal × 1.07 with no intermediate rounding.
func Summarize(items []LineItem) Summary {
	subtotal := TotalPrice(items)
	return Summary{
		TotalItems: TotalItems(items),
		Subtotal:   subtotal,
		Tax:        subtotal.Mul(TaxRate),
		Total:      subtotal.Mul(taxMultiplier),
	}
}

// NormalizeQuantity interprets untrusted numeric input as a quantity.
// Fractions are truncated and non-finite values become 0, which removes the line.
func NormalizeQuantity(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(math.Trunc(v))
}
