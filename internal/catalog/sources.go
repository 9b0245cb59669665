package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/Cheertaboi/tgshop/internal/models"
)

var builtinProducts = []models.Product{
	{ID: "p1", Name: "T-shirt", Price: 1990},
	{ID: "p2", Name: "Cap", Price: 1490},
	{ID: "p3", Name: "Hoodie", Price: 4990},
}

type staticSource []models.Product

func (s staticSource) Products(context.Context) ([]models.Product, error) {
	return append([]models.Product(nil), s...), nil
}

// Builtin is the default storefront assortment.
func Builtin() Source {
	return staticSource(builtinProducts)
}

// Static serves a fixed product list.
func Static(products ...models.Product) Source {
	return staticSource(products)
}

// TOMLFile reads products from a file of the form
//
//	[[products]]
//	id = "p1"
//	name = "T-shirt"
//	price = 1990
type TOMLFile string

type tomlCatalog struct {
	Products []models.Product `toml:"products"`
}

func (f TOMLFile) Products(context.Context) ([]models.Product, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", string(f), err)
	}
	var doc tomlCatalog
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", string(f), err)
	}
	return doc.Products, nil
}
