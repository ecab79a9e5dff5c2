package cart

import (
	"siipcoffee/internal/models"
)

// Store holds the cart lines and customer metadata for a single session.
// Lines keep insertion order and are keyed by menu item id: at most one
// line per id, and a line whose quantity drops to zero is removed, never
// retained. The store is not safe for concurrent use; the owning session
// serializes access.
type Store struct {
	lines    []models.CartLine
	index    map[string]int
	customer models.CustomerInfo
}

// NewStore creates an empty cart store with default customer fields.
func NewStore() *Store {
	return &Store{
		index:    make(map[string]int),
		customer: models.DefaultCustomerInfo(),
	}
}

// AddItem merges quantity into the line for item.ID, creating the line if
// needed. Quantity may be negative for decrement flows; a resulting
// quantity at or below zero deletes the line. Adding zero to a missing
// line is a no-op.
func (s *Store) AddItem(item models.MenuItem, quantity int) {
	if idx, ok := s.index[item.ID]; ok {
		s.lines[idx].Quantity += quantity
		if s.lines[idx].Quantity <= 0 {
			s.removeAt(idx)
		}
		return
	}
	if quantity <= 0 {
		return
	}
	s.index[item.ID] = len(s.lines)
	s.lines = append(s.lines, models.CartLine{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: quantity,
	})
}

// AddLine merges a pre-built line, carrying notes through on insert.
func (s *Store) AddLine(line models.CartLine) {
	if idx, ok := s.index[line.ID]; ok {
		s.lines[idx].Quantity += line.Quantity
		if line.Notes != "" {
			s.lines[idx].Notes = line.Notes
		}
		if s.lines[idx].Quantity <= 0 {
			s.removeAt(idx)
		}
		return
	}
	if line.Quantity <= 0 {
		return
	}
	s.index[line.ID] = len(s.lines)
	s.lines = append(s.lines, line)
}

// UpdateQuantity sets the line's quantity to an absolute value; zero
// removes the line. Unknown ids are a no-op.
func (s *Store) UpdateQuantity(id string, quantity int) {
	idx, ok := s.index[id]
	if !ok {
		return
	}
	if quantity <= 0 {
		s.removeAt(idx)
		return
	}
	s.lines[idx].Quantity = quantity
}

// RemoveItem deletes the line unconditionally.
func (s *Store) RemoveItem(id string) {
	if idx, ok := s.index[id]; ok {
		s.removeAt(idx)
	}
}

// Clear empties all lines and resets customer metadata to defaults.
func (s *Store) Clear() {
	s.lines = nil
	s.index = make(map[string]int)
	s.customer = models.DefaultCustomerInfo()
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalItems returns the sum of all line quantities.
func (s *Store) TotalItems() int {
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice returns the sum of price*quantity over current lines. It is
// recomputed on every call so it can never go stale.
func (s *Store) TotalPrice() float64 {
	var total float64
	for _, line := range s.lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// Empty reports whether the cart holds no lines.
func (s *Store) Empty() bool {
	return len(s.lines) == 0
}

// Customer returns the session's customer metadata.
func (s *Store) Customer() models.CustomerInfo {
	return s.customer
}

// SetCustomer replaces the session's customer metadata.
func (s *Store) SetCustomer(info models.CustomerInfo) {
	s.customer = info
}

// SetOrderType sets the order type if it is one of the known values.
func (s *Store) SetOrderType(t models.OrderType) {
	if t.Valid() {
		s.customer.OrderType = t
	}
}

func (s *Store) removeAt(idx int) {
	delete(s.index, s.lines[idx].ID)
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	for i := idx; i < len(s.lines); i++ {
		s.index[s.lines[i].ID] = i
	}
}
