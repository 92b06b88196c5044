package catalog

import (
	"fmt"
	"strings"

	"QueChoisir/internal/domain"
)

// FindByName does a case-insensitive exact match on product name.
func FindByName(products []domain.Product, name string) (domain.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, p := range products {
		if strings.ToLower(p.Name) == needle {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %q is not in the catalog", name)
}

// FindAll resolves every name or fails on the first unknown one.
func FindAll(products []domain.Product, names []string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(names))
	for _, name := range names {
		p, err := FindByName(products, name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
