// Package catalog holds the read-only product table shared by all requests.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cheertaboi/tgshop/internal/models"
)

// Source provides the products a Catalog is built from.
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// Catalog is immutable after New, so concurrent readers need no locking.
type Catalog struct {
	products []models.Product
	byID     map[string]models.Product
}

// New validates products and indexes them by id.
func New(products []models.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[string]models.Product, len(products)),
	}
	for _, p := range products {
		if p.ID == "" {
			return nil, errors.New("product with empty id")
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %s: negative price %d", p.ID, p.Price)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %s", p.ID)
		}
		c.byID[p.ID] = p
		c.products = append(c.products, p)
	}
	return c, nil
}

// Load builds a Catalog from src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return New(products)
}

// Products returns a copy of the catalog in its original order.
func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Price(id string) (int64, bool) {
	p, ok := c.byID[id]
	return p.Price, ok
}

func (c *Catalog) Len() int {
	return len(c.products)
}
