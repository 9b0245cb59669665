package models

// Product is a catalog entry. Price is in minor currency units.
type Product struct {
	ID    string `json:"id" toml:"id"`
	Name  string `json:"name" toml:"name"`
	Price int64  `json:"price" toml:"price"`
}
