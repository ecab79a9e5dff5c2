package intent

import (
	"siipcoffee/internal/cart"
	"siipcoffee/internal/models"
)

// Interpreter maps a chat turn's backend reply into cart mutations. The
// backend is authoritative for price and availability at the moment of
// intent creation, so items are applied without re-validating them against
// the menu catalog.
type Interpreter struct{}

// NewInterpreter creates an interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Apply routes the reply's order intent into the store. Only the
// create_order action mutates the cart; any other action, a nil intent, or
// a reply without one leaves the cart untouched. Returns true when the
// cart was mutated.
func (in *Interpreter) Apply(store *cart.Store, reply *models.ChatReply) bool {
	if reply == nil || reply.OrderIntent == nil {
		return false
	}
	return in.ApplyIntent(store, reply.OrderIntent)
}

// ApplyIntent applies a structured order intent directly, iterating its
// items in order and merging each into the store.
func (in *Interpreter) ApplyIntent(store *cart.Store, oi *models.OrderIntent) bool {
	if oi == nil || oi.Action != models.ActionCreateOrder {
		return false
	}

	mutated := false
	for _, it := range oi.Items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		store.AddLine(models.CartLine{
			ID:       it.MenuID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: qty,
			Notes:    it.Notes,
		})
		mutated = true
	}

	if oi.OrderType != "" {
		store.SetOrderType(models.OrderType(oi.OrderType))
	}
	return mutated
}
