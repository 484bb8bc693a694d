package cart

import (
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	// MaxQuantity caps a single line.
	MaxQuantity = 10
	// MaxLines caps the number of distinct lines so the cart fits in a cookie.
	MaxLines = 30
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be between 1 and 10")
	ErrLineNotFound    = errors.New("cart: line not found")
	ErrTooManyLines    = errors.New("cart: too many lines")
	ErrMissingProduct  = errors.New("cart: product id is required")
)

// Line is one product/size/color selection.
type Line struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"qty"`
}

// Cart is the shopper's pending order.
type Cart struct {
	Lines []Line `json:"lines,omitempty"`
}

// NewLineID returns a sortable unique line identifier.
func NewLineID() string {
	return ulid.Make().String()
}

// Add inserts a line, or bumps the quantity of an identical selection up to MaxQuantity.
func (c *Cart) Add(productID, size, color string, qty int) (Line, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Line{}, ErrMissingProduct
	}
	if qty < 1 || qty > MaxQuantity {
		return Line{}, ErrInvalidQuantity
	}
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)

	for i, line := range c.Lines {
		if line.ProductID == productID && line.Size == size && line.Color == color {
			c.Lines[i].Quantity = min(line.Quantity+qty, MaxQuantity)
			return c.Lines[i], nil
		}
	}
	if len(c.Lines) >= MaxLines {
		return Line{}, ErrTooManyLines
	}
	line := Line{ID: NewLineID(), ProductID: productID, Size: size, Color: color, Quantity: qty}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// SetQuantity updates a line; zero removes it.
func (c *Cart) SetQuantity(lineID string, qty int) error {
	if qty == 0 {
		return c.Remove(lineID)
	}
	if qty < 0 || qty > MaxQuantity {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove deletes a line.
func (c *Cart) Remove(lineID string) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Count is the number of items across lines.
func (c Cart) Count() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// ProductIDs lists the distinct product ids in line order.
func (c Cart) ProductIDs() []string {
	seen := make(map[string]struct{}, len(c.Lines))
	ids := make([]string, 0, len(c.Lines))
	for _, line := range c.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	return Cart{Lines: append([]Line(nil), c.Lines...)}
}
