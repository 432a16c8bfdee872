// Package catalog holds the immutable product list and every name and budget
// lookup the router performs against it.
package catalog

import (
	"fmt"
	"strings"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
	errx "github.com/Chative-shop-assistant/server/internal/core/error"
)

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	products []model.Product
	names    []string // normalized names, same order as products
	byID     map[model.ProductID]int
}

// New validates the products and freezes them in the given order.
func New(products []model.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, 0, len(products)),
		names:    make([]string, 0, len(products)),
		byID:     make(map[model.ProductID]int, len(products)),
	}
	seenNames := make(map[string]model.ProductID, len(products))

	for i, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		if p.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", errx.ErrInvalidProduct, i)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("%w: product %s has no name", errx.ErrInvalidProduct, p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("%w: product %s has negative price %d", errx.ErrInvalidProduct, p.ID, p.Price)
		}
		if p.Stock != nil && *p.Stock < 0 {
			return nil, fmt.Errorf("%w: product %s has negative stock %d", errx.ErrInvalidProduct, p.ID, *p.Stock)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: id %s", errx.ErrDuplicateProduct, p.ID)
		}
		name := p.NormalizedName()
		if other, dup := seenNames[name]; dup {
			return nil, fmt.Errorf("%w: %q is used by %s and %s", errx.ErrDuplicateProduct, p.Name, other, p.ID)
		}
		seenNames[name] = p.ID

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
		c.names = append(c.names, name)
	}
	return c, nil
}

// All returns a copy of every product in catalog order.
func (c *Catalog) All() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}

func (c *Catalog) ByID(id model.ProductID) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Match resolves free text to a product when the text contains the product's
// normalized name or the name contains the text. The first product in catalog
// order wins when several match.
func (c *Catalog) Match(text string) (model.Product, bool) {
	text = model.Normalize(text)
	if text == "" {
		return model.Product{}, false
	}
	for i, name := range c.names {
		if strings.Contains(text, name) || strings.Contains(name, text) {
			return c.products[i], true
		}
	}
	return model.Product{}, false
}

// UnderBudget returns the products priced at or below bound, in catalog order.
func (c *Catalog) UnderBudget(bound int64) []model.Product {
	var out []model.Product
	for _, p := range c.products {
		if p.Price <= bound {
			out = append(out, p)
		}
	}
	return out
}
