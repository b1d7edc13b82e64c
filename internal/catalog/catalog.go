package catalog

import (
	"github.com/srujanab94/acp-commerce/internal/domain"
)

type Availability string

const (
	InStock    Availability = "in_stock"
	OutOfStock Availability = "out_of_stock"
)

type Product struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Price        domain.Money `json:"price"`
	Availability Availability `json:"availability"`
	ShippingInfo string       `json:"shipping_info,omitempty"`
	ReturnPolicy string       `json:"return_policy,omitempty"`
}

func (p *Product) InStock() bool {
	return p.Availability == InStock
}

// Catalog is the read-only product lookup the checkout service consumes.
type Catalog interface {
	Lookup(id string) (*Product, bool)
	List() []Product
}

// StaticCatalog serves a fixed product feed from memory.
type StaticCatalog struct {
	products map[string]Product
	order    []string
}

func NewStaticCatalog(products []Product) *StaticCatalog {
	c := &StaticCatalog{
		products: make(map[string]Product, len(products)),
		order:    make([]string, 0, len(products)),
	}
	for _, p := range products {
		if _, seen := c.products[p.ID]; !seen {
			c.order = append(c.order, p.ID)
		}
		c.products[p.ID] = p
	}
	return c
}

func (c *StaticCatalog) Lookup(id string) (*Product, bool) {
	p, ok := c.products[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

// List returns products in feed order.
func (c *StaticCatalog) List() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}
