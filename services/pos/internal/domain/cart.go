package domain

import "github.com/shopspring/decimal"

// CartLine is one product in the cart.
type CartLine struct {
	Product        Product `json:"product"`
	Quantity       int     `json:"quantity"`
	PrescriptionID *int64  `json:"prescription_id,omitempty"`
}

// Subtotal returns unit price times quantity at full precision.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.BasePrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PendingPrescription reports whether the line still needs a prescription.
func (l CartLine) PendingPrescription() bool {
	return l.Product.RequiresPrescription && l.PrescriptionID == nil
}

// Cart holds at most one line per product id, in insertion order.
type Cart struct {
	lines []CartLine
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct products.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ItemCount returns the total number of units across lines.
func (c *Cart) ItemCount() int {
	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) index(productID int64) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Find returns the line for productID.
func (c *Cart) Find(productID int64) (CartLine, bool) {
	i := c.index(productID)
	if i < 0 {
		return CartLine{}, false
	}
	return c.lines[i], true
}

// QuantityOf returns the quantity already in the cart for productID.
func (c *Cart) QuantityOf(productID int64) int {
	if l, ok := c.Find(productID); ok {
		return l.Quantity
	}
	return 0
}

// Increment adds one unit of p, creating the line when absent. The stored
// product snapshot is refreshed so pricing uses the latest catalog data.
func (c *Cart) Increment(p Product) CartLine {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Product = p
		c.lines[i].Quantity++
		return c.lines[i]
	}
	line := CartLine{Product: p, Quantity: 1}
	c.lines = append(c.lines, line)
	return line
}

// AttachPrescription sets the prescription reference on an existing line.
func (c *Cart) AttachPrescription(productID, prescriptionID int64) error {
	i := c.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	id := prescriptionID
	c.lines[i].PrescriptionID = &id
	return nil
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less
// removes it. Missing lines are ignored.
func (c *Cart) SetQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID int64) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.lines = nil
}

// MissingPrescriptions returns the lines that require a prescription but do
// not reference one yet.
func (c *Cart) MissingPrescriptions() []CartLine {
	var out []CartLine
	for _, l := range c.lines {
		if l.PendingPrescription() {
			out = append(out, l)
		}
	}
	return out
}

// DetachPrescriptions drops every prescription reference, used when the
// customer changes and the old references no longer apply.
func (c *Cart) DetachPrescriptions() {
	for i := range c.lines {
		c.lines[i].PrescriptionID = nil
	}
}
