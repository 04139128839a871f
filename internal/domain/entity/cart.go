package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLineNotFound    = errors.New("item not found in cart")
	ErrInvalidQuantity = errors.New("cart item quantity must be positive")
	ErrEmptyProductID  = errors.New("product ID cannot be empty for cart item")
)

// CartLine is one product entry in a cart. Name, price and image are
// captured from the catalog when the line is first added.
type CartLine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per product id, in the order products were
// first added. Version is the persisted revision used for compare-and-swap
// saves of user carts; guest carts ignore it.
type Cart struct {
	OwnerID   string     `json:"owner_id"`
	Lines     []CartLine `json:"items"`
	Version   int64      `json:"-"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(ownerID string) *Cart {
	return &Cart{
		OwnerID:   ownerID,
		Lines:     make([]CartLine, 0),
		UpdatedAt: time.Now().UTC(),
	}
}

func (c *Cart) Line(productID string) (*CartLine, int) {
	for i, line := range c.Lines {
		if line.ID == productID {
			return &c.Lines[i], i
		}
	}
	return nil, -1
}

// AddLine appends line, or increases the quantity of the existing line with
// the same id.
func (c *Cart) AddLine(line CartLine) error {
	if line.ID == "" {
		return ErrEmptyProductID
	}
	if line.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	if existing, _ := c.Line(line.ID); existing != nil {
		existing.Quantity += line.Quantity
	} else {
		c.Lines = append(c.Lines, line)
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateQuantity sets the quantity of a line; a non-positive quantity removes it.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	line, index := c.Line(productID)
	if line == nil {
		return ErrLineNotFound
	}

	if quantity <= 0 {
		c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	} else {
		line.Quantity = quantity
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Cart) RemoveLine(productID string) error {
	_, index := c.Line(productID)
	if index == -1 {
		return ErrLineNotFound
	}

	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// MergeCarts reconciles a persisted user cart with an anonymous cart.
// The result lists every line of user in order, followed by the lines of
// guest whose ids user does not contain, in order. Lines present in both
// carry the sum of the two quantities. Neither input is modified.
func MergeCarts(user, guest []CartLine) []CartLine {
	merged := make([]CartLine, len(user), len(user)+len(guest))
	copy(merged, user)

	index := make(map[string]int, len(user)+len(guest))
	for i, line := range merged {
		index[line.ID] = i
	}

	for _, line := range guest {
		if i, ok := index[line.ID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
