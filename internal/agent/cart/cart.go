// Package cart implements the add/merge, view, clear and checkout operations on
// a session cart. Callers serialize access; the functions here never lock.
package cart

import (
	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

// ProductLookup resolves cart lines back to catalog products.
type ProductLookup interface {
	ByID(id model.ProductID) (model.Product, bool)
}

type Line struct {
	Product   model.Product
	Quantity  int
	LineTotal int64
}

type Summary struct {
	Lines []Line
	Total int64
	// Missing lists ids stored in the cart that the catalog no longer knows.
	Missing []model.ProductID
}

func (s Summary) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Add merges p into the cart and returns the line's new quantity.
func Add(c *model.Cart, p model.Product) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			return c.Lines[i].Quantity
		}
	}
	c.Lines = append(c.Lines, model.CartLine{ProductID: p.ID, Quantity: 1})
	return 1
}

// View prices every line in insertion order without mutating the cart.
func View(c model.Cart, lookup ProductLookup) Summary {
	var s Summary
	for _, l := range c.Lines {
		p, ok := lookup.ByID(l.ProductID)
		if !ok {
			s.Missing = append(s.Missing, l.ProductID)
			continue
		}
		total := p.Price * int64(l.Quantity)
		s.Lines = append(s.Lines, Line{Product: p, Quantity: l.Quantity, LineTotal: total})
		s.Total += total
	}
	return s
}

// Checkout returns the same summary as View and then empties the cart.
func Checkout(c *model.Cart, lookup ProductLookup) Summary {
	s := View(*c, lookup)
	c.Lines = nil
	return s
}

// Clear empties the cart and reports how many lines were dropped.
func Clear(c *model.Cart) int {
	n := len(c.Lines)
	c.Lines = nil
	return n
}
