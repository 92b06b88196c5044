package compare

import (
	"sync"

	"QueChoisir/internal/domain"
)

// MaxProducts bounds the comparison set.
const MaxProducts = 3

// Selection is an ordered, duplicate-free set of at most MaxProducts products.
type Selection struct {
	mu       sync.Mutex
	products []domain.Product
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Toggle removes p when selected, otherwise appends it if there is room.
// It reports whether p is selected afterwards.
func (s *Selection) Toggle(p domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p); i >= 0 {
		s.products = append(s.products[:i], s.products[i+1:]...)
		return false
	}
	if len(s.products) >= MaxProducts {
		return false
	}
	s.products = append(s.products, p)
	return true
}

// IsSelected reports membership by identity.
func (s *Selection) IsSelected(p domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(p) >= 0
}

// CanSelectMore is true while below capacity.
func (s *Selection) CanSelectMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products) < MaxProducts
}

// Len returns the number of selected products.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// Products returns a copy in selection order.
func (s *Selection) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = nil
}

func (s *Selection) indexOf(p domain.Product) int {
	for i, selected := range s.products {
		if selected.SameAs(p) {
			return i
		}
	}
	return -1
}
