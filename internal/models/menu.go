package models

import (
	"encoding/json"
	"fmt"
)

// MenuItem represents a purchasable item on the menu
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
}

// MenuCategory represents a category of menu items
type MenuCategory string

const (
	// Menu categories used by the SiipCoffee catalog
	MenuCategoryIcedCoffee    MenuCategory = "iced_coffee"
	MenuCategoryEspressoBased MenuCategory = "espresso_based"
	MenuCategoryNonCoffee     MenuCategory = "non_coffee"
	MenuCategoryRefreshment   MenuCategory = "refreshment"
	MenuCategoryPastry        MenuCategory = "pastry"
	MenuCategoryOthers        MenuCategory = "others"
)

// Catalog maps category names to the items they contain.
type Catalog map[string][]MenuItem

// UnmarshalJSON decodes a catalog defensively: a category whose value is
// absent, null, or not an array decodes to an empty slice instead of failing.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("catalog is not an object: %w", err)
	}

	out := make(Catalog, len(raw))
	for category, value := range raw {
		var items []MenuItem
		if err := json.Unmarshal(value, &items); err != nil {
			items = nil
		}
		if items == nil {
			items = []MenuItem{}
		}
		out[category] = items
	}
	*c = out
	return nil
}

// Items returns all items across categories in a stable category order.
func (c Catalog) Items() []MenuItem {
	order := []MenuCategory{
		MenuCategoryIcedCoffee,
		MenuCategoryEspressoBased,
		MenuCategoryNonCoffee,
		MenuCategoryRefreshment,
		MenuCategoryPastry,
		MenuCategoryOthers,
	}

	var all []MenuItem
	seen := make(map[string]bool, len(c))
	for _, cat := range order {
		all = append(all, c[string(cat)]...)
		seen[string(cat)] = true
	}
	for cat, items := range c {
		if !seen[cat] {
			all = append(all, items...)
		}
	}
	return all
}

// FindByID looks an item up across all categories.
func (c Catalog) FindByID(id string) (MenuItem, bool) {
	for _, items := range c {
		for _, item := range items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return MenuItem{}, false
}

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if item.ID == "" {
		return fmt.Errorf("menu item id is required")
	}
	if item.Name == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Price < 0 {
		return fmt.Errorf("menu item price must not be negative")
	}
	return nil
}

// SuggestedItem is the duck-typed "suggested item" shape the backend sends:
// sometimes a bare item name string, sometimes a full menu item object.
type SuggestedItem struct {
	Name string
	Item *MenuItem
}

// Priced reports whether the suggestion carries a full menu item.
func (s SuggestedItem) Priced() bool {
	return s.Item != nil
}

func (s *SuggestedItem) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		s.Item = nil
		return nil
	}

	var item MenuItem
	if err := json.Unmarshal(data, &item); err != nil {
		return fmt.Errorf("suggested item is neither string nor object: %w", err)
	}
	s.Name = item.Name
	s.Item = &item
	return nil
}

func (s SuggestedItem) MarshalJSON() ([]byte, error) {
	if s.Item != nil {
		return json.Marshal(s.Item)
	}
	return json.Marshal(s.Name)
}
