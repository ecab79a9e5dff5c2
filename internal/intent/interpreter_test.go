package intent

import (
	"testing"

	"siipcoffee/internal/cart"
	"siipcoffee/internal/models"
)

func TestApplyCreateOrder(t *testing.T) {
	store := cart.NewStore()
	in := NewInterpreter()

	mutated := in.ApplyIntent(store, &models.OrderIntent{
		Action: models.ActionCreateOrder,
		Items: []models.OrderIntentItem{
			{MenuID: "E001", Name: "Espresso", Price: 12000, Quantity: 2},
		},
	})

	if !mutated {
		t.Fatal("expected cart mutation")
	}
	lines := store.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d", len(lines))
	}
	if lines[0].ID != "E001" || lines[0].Quantity != 2 {
		t.Errorf("line = %+v, want id E001 qty 2", lines[0])
	}
	if got := store.TotalPrice(); got != 24000 {
		t.Errorf("TotalPrice() = %v, want 24000", got)
	}
}

func TestApplyMergesIntoExistingLine(t *testing.T) {
	store := cart.NewStore()
	store.AddItem(models.MenuItem{ID: "E001", Name: "Espresso", Price: 12000}, 1)

	in := NewInterpreter()
	in.ApplyIntent(store, &models.OrderIntent{
		Action: models.ActionCreateOrder,
		Items: []models.OrderIntentItem{
			{MenuID: "E001", Name: "Espresso", Price: 12000, Quantity: 2},
		},
	})

	lines := store.Lines()
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line with qty 3, got %+v", lines)
	}
}

func TestApplySetsOrderType(t *testing.T) {
	store := cart.NewStore()
	in := NewInterpreter()

	in.ApplyIntent(store, &models.OrderIntent{
		Action:    models.ActionCreateOrder,
		OrderType: "take_away",
		Items: []models.OrderIntentItem{
			{MenuID: "P001", Name: "Almond Croissant", Price: 20500, Quantity: 1},
		},
	})

	if got := store.Customer().OrderType; got != models.OrderTypeTakeAway {
		t.Errorf("order type = %q, want take_away", got)
	}
}

func TestApplyIgnoresUnknownAction(t *testing.T) {
	store := cart.NewStore()
	in := NewInterpreter()

	mutated := in.ApplyIntent(store, &models.OrderIntent{
		Action: "cancel_order",
		Items: []models.OrderIntentItem{
			{MenuID: "E001", Name: "Espresso", Price: 12000, Quantity: 1},
		},
	})

	if mutated || !store.Empty() {
		t.Error("non create_order actions must leave the cart untouched")
	}
}

func TestApplyNilIntentIsNoop(t *testing.T) {
	store := cart.NewStore()
	in := NewInterpreter()

	if in.Apply(store, nil) {
		t.Error("nil reply must not mutate")
	}
	if in.Apply(store, &models.ChatReply{Response: "hi"}) {
		t.Error("reply without intent must not mutate")
	}
	if !store.Empty() {
		t.Error("cart must stay empty")
	}
}

func TestApplyDefaultsZeroQuantityToOne(t *testing.T) {
	store := cart.NewStore()
	in := NewInterpreter()

	in.ApplyIntent(store, &models.OrderIntent{
		Action: models.ActionCreateOrder,
		Items: []models.OrderIntentItem{
			{MenuID: "N001", Name: "Chocolate", Price: 20000},
		},
	})

	lines := store.Lines()
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("expected qty defaulted to 1, got %+v", lines)
	}
}

func TestApplyCarriesNotes(t *testing.T) {
	store := cart.NewStore()
	in := NewInterpreter()

	in.ApplyIntent(store, &models.OrderIntent{
		Action: models.ActionCreateOrder,
		Items: []models.OrderIntentItem{
			{MenuID: "E003", Name: "Coffee Latte", Price: 18000, Quantity: 1, Notes: "oat milk"},
		},
	})

	lines := store.Lines()
	if len(lines) != 1 || lines[0].Notes != "oat milk" {
		t.Fatalf("expected notes carried through, got %+v", lines)
	}
}
