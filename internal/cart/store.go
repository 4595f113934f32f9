// Package cart is the session's in-memory shopping cart. It performs no
// network I/O; checkout is what hands the lines to the backend.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

// MaxQuantity caps the units held on a single line.
const MaxQuantity = 1000

// Store holds cart lines in insertion order, at most one per product.
type Store struct {
	mu    sync.RWMutex
	lines []domain.CartLine
}

// NewStore creates an empty cart.
func NewStore() *Store {
	return &Store{}
}

// Add puts quantity units of p in the cart. A quantity below 1 counts as 1.
// Adding a product already in the cart increases its quantity, saturating
// at MaxQuantity.
func (s *Store) Add(p domain.Product, quantity int) {
	quantity = min(max(quantity, 1), MaxQuantity)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p.ID); i >= 0 {
		// Both operands are at most MaxQuantity, so the sum cannot wrap.
		s.lines[i].Quantity = min(s.lines[i].Quantity+quantity, MaxQuantity)
		observe("add", "incremented")
		return
	}
	s.lines = append(s.lines, domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageRef:  p.Image,
		Quantity:  quantity,
	})
	observe("add", "inserted")
}

// UpdateQuantity sets the quantity of a line, capped at MaxQuantity. A
// quantity of zero or less removes the line; an unknown product is ignored.
func (s *Store) UpdateQuantity(id domain.ProductID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	switch {
	case i < 0:
		observe("update", "noop")
	case quantity <= 0:
		s.removeAt(i)
		observe("update", "removed")
	default:
		s.lines[i].Quantity = min(quantity, MaxQuantity)
		observe("update", "set")
	}
}

// Remove drops the line for id if there is one.
func (s *Store) Remove(id domain.ProductID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.removeAt(i)
		observe("remove", "removed")
		return
	}
	observe("remove", "noop")
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	observe("clear", "cleared")
}

// Total is the sum of unit price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return total(s.lines)
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartLine{}, s.lines...)
}

// Len returns the number of distinct products in the cart.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// ItemCount returns the number of units across all lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Snapshot returns lines, unit count and total read under one lock.
func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.CartSnapshot{
		Lines: append([]domain.CartLine{}, s.lines...),
		Total: total(s.lines),
	}
	for _, l := range s.lines {
		snap.ItemCount += l.Quantity
	}
	return snap
}

func (s *Store) indexOf(id domain.ProductID) int {
	for i := range s.lines {
		if s.lines[i].ProductID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

func total(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
