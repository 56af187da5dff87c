package domain

import (
	"errors"
	"time"

	"github.com/leonjames-san/familiams/internal/money"
)

// ErrInvalidQuantity is returned when an item would be added with a quantity
// below one.
var ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")

// ItemKind says whether a cart line references a product or a service from
// the catalog. A line carries exactly one kind.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindService ItemKind = "service"
)

// CartLine is one catalog item and its requested quantity. Quantity is
// always >= 1; a line whose quantity would drop to zero is removed instead.
type CartLine struct {
	ID          string      `json:"id"`
	Kind        ItemKind    `json:"kind"`
	DisplayName string      `json:"display_name"`
	ImageRef    string      `json:"image_ref,omitempty"`
	SellerName  string      `json:"seller_name,omitempty"`
	UnitPrice   money.Money `json:"unit_price"`
	Quantity    int         `json:"quantity"`
}

// Subtotal is the line's unit price scaled by its quantity.
func (l CartLine) Subtotal() money.Money {
	return l.UnitPrice.Mul(l.Quantity)
}

// Cart is a session's full set of cart lines, keyed by item ID with
// insertion order preserved for display. Total and item count are derived
// from the lines on demand; there is no separately maintained counter that
// could drift.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// New returns an empty cart owned by the given session.
func New(sessionID string) *Cart {
	now := time.Now()
	return &Cart{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem inserts the candidate line, or, when a line with the same ID is
// already present, increments that line's quantity by the candidate's.
// Repeated adds of the same item accumulate; they never create duplicates.
func (c *Cart) AddItem(candidate CartLine) error {
	if candidate.Quantity < 1 {
		return ErrInvalidQuantity
	}

	for i := range c.Lines {
		if c.Lines[i].ID == candidate.ID {
			c.Lines[i].Quantity += candidate.Quantity
			c.touch()
			return nil
		}
	}

	c.Lines = append(c.Lines, candidate)
	c.touch()
	return nil
}

// RemoveItem deletes the line with the given ID. Removing an absent ID is a
// no-op.
func (c *Cart) RemoveItem(id string) {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return
		}
	}
}

// UpdateQuantity replaces the quantity of the line with the given ID.
// A quantity of zero or less removes the line. An absent ID is a no-op.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(id)
		return
	}

	for i := range c.Lines {
		if c.Lines[i].ID == id {
			c.Lines[i].Quantity = quantity
			c.touch()
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
	c.touch()
}

// Line returns the line with the given ID, if present.
func (c *Cart) Line(id string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return CartLine{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total sums unit price × quantity over all lines.
func (c *Cart) Total() money.Money {
	total := money.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount sums the quantities of all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
