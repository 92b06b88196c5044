package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Identity is the ID; descriptive fields may repeat.
type Product struct {
	ID             uuid.UUID
	Name           string
	Specifications string
	Price          decimal.Decimal
	Category       string
}

// NewProduct validates the descriptive fields and assigns a fresh identity.
func NewProduct(name, specifications string, price decimal.Decimal, category string) (Product, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)

	if name == "" {
		return Product{}, fmt.Errorf("product name is empty")
	}
	if category == "" {
		return Product{}, fmt.Errorf("product %s: category is empty", name)
	}
	if price.IsNegative() {
		return Product{}, fmt.Errorf("product %s: negative price %s", name, price)
	}

	return Product{
		ID:             uuid.New(),
		Name:           name,
		Specifications: strings.TrimSpace(specifications),
		Price:          price,
		Category:       category,
	}, nil
}

// MustProduct is NewProduct for static catalog data.
func MustProduct(name, specifications string, price float64, category string) Product {
	p, err := NewProduct(name, specifications, decimal.NewFromFloat(price), category)
	if err != nil {
		panic(err)
	}
	return p
}

// SameAs reports identity equality.
func (p Product) SameAs(other Product) bool {
	return p.ID == other.ID
}
