package catalog

import (
	"context"

	"QueChoisir/internal/domain"
)

// SampleSourceName identifies the built-in catalog.
const SampleSourceName = "sample"

var featuredNames = map[string]struct{}{
	"iPhone 15 Pro":      {},
	"Samsung Galaxy S24": {},
	`MacBook Pro 14"`:    {},
	"Dell XPS 13":        {},
	"Sony WH-1000XM5":    {},
}

// Sample returns the fixed sample catalog. Each call assigns fresh identities.
func Sample() []domain.Product {
	return []domain.Product{
		domain.MustProduct("iPhone 15 Pro", "A17 Pro chip, 6.1-inch display, 128GB storage, Triple camera system", 999.0, "Smartphone"),
		domain.MustProduct("Samsung Galaxy S24", "Snapdragon 8 Gen 3, 6.2-inch display, 256GB storage, AI features", 899.0, "Smartphone"),
		domain.MustProduct("Google Pixel 8 Pro", "Google Tensor G3, 6.7-inch display, 128GB storage, AI photography", 899.0, "Smartphone"),
		domain.MustProduct(`MacBook Pro 14"`, "M3 Pro chip, 14-inch display, 512GB SSD, 18GB RAM", 1999.0, "Laptop"),
		domain.MustProduct("Dell XPS 13", "Intel Core i7, 13.4-inch display, 512GB SSD, 16GB RAM", 1299.0, "Laptop"),
		domain.MustProduct("MacBook Air M3", "M3 chip, 13-inch display, 256GB SSD, 8GB RAM", 1099.0, "Laptop"),
		domain.MustProduct("Sony WH-1000XM5", "Noise canceling, 30-hour battery, Premium sound quality", 399.0, "Headphones"),
		domain.MustProduct("Apple AirPods Max", "Active noise cancellation, 20-hour battery, Spatial audio", 549.0, "Headphones"),
		domain.MustProduct("Bose QuietComfort 45", "Noise cancelling, 24-hour battery, Comfortable design", 329.0, "Headphones"),
	}
}

// Featured keeps the products shown on the top-products ranking, in catalog order.
// Catalogs without any featured product are returned whole.
func Featured(products []domain.Product) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if _, ok := featuredNames[p.Name]; ok {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return products
	}
	return out
}

// SampleSource serves Sample through the registry.
type SampleSource struct{}

// Name identifies the strategy inside the registry.
func (SampleSource) Name() string {
	return SampleSourceName
}

// Load ignores the request; the sample catalog has no parameters.
func (SampleSource) Load(_ context.Context, _ Request) ([]domain.Product, error) {
	return Sample(), nil
}
