package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogDecodeTolerant(t *testing.T) {
	raw := `{
		"espresso_based": [{"id": "E001", "name": "Espresso", "price": 12000}],
		"pastry": null,
		"others": "not an array"
	}`

	var catalog Catalog
	require.NoError(t, json.Unmarshal([]byte(raw), &catalog))

	assert.Len(t, catalog["espresso_based"], 1)
	assert.Empty(t, catalog["pastry"])
	assert.Empty(t, catalog["others"])
	assert.NotNil(t, catalog["pastry"])
}

func TestCatalogFindByID(t *testing.T) {
	catalog := DefaultCatalog()

	item, ok := catalog.FindByID("E001")
	require.True(t, ok)
	assert.Equal(t, 12000.0, item.Price)

	_, ok = catalog.FindByID("Z999")
	assert.False(t, ok)
}

func TestCatalogItemsStableOrder(t *testing.T) {
	catalog := DefaultCatalog()

	first := catalog.Items()
	second := catalog.Items()

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	// Iced coffee items come before pastry in the fixed category order
	assert.Equal(t, "C001", first[0].ID)
}

func TestSuggestedItemDecodeBothShapes(t *testing.T) {
	raw := `["Espresso", {"id": "E002", "name": "Cappuccino", "price": 18000}]`

	var items []SuggestedItem
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 2)

	assert.Equal(t, "Espresso", items[0].Name)
	assert.False(t, items[0].Priced())

	assert.Equal(t, "Cappuccino", items[1].Name)
	require.True(t, items[1].Priced())
	assert.Equal(t, 18000.0, items[1].Item.Price)
}

func TestDecodeReplyTextReceipt(t *testing.T) {
	text := `{"receipt": {"order_id": "ORD-1", "total_price": 24000, "message": "Thanks!"}}`

	receipt, ok := DecodeReplyText(text)
	require.True(t, ok)
	assert.Equal(t, "ORD-1", receipt.OrderID)
	assert.Equal(t, "Thanks!", receipt.Message)
}

func TestDecodeReplyTextPlain(t *testing.T) {
	for _, text := range []string{
		"Here is our menu!",
		`{"intent": "view_menu"}`,
		`{"receipt": {"order_id": ""}}`,
		`{broken json`,
	} {
		_, ok := DecodeReplyText(text)
		assert.False(t, ok, "expected %q to decode as plain text", text)
	}
}

func TestValidateMenuItem(t *testing.T) {
	assert.NoError(t, ValidateMenuItem(&MenuItem{ID: "X1", Name: "Thing", Price: 1000}))
	assert.Error(t, ValidateMenuItem(&MenuItem{Name: "No ID"}))
	assert.Error(t, ValidateMenuItem(&MenuItem{ID: "X1"}))
	assert.Error(t, ValidateMenuItem(&MenuItem{ID: "X1", Name: "Neg", Price: -1}))
}

func TestOrderRecordToReceipt(t *testing.T) {
	record := OrderRecord{
		OrderID:       "ORD-5",
		PaymentMethod: "cash",
		Tax:           2400,
		Total:         24000,
		Items: []OrderItemRecord{
			{Name: "Espresso", Quantity: 2, UnitPrice: 12000},
		},
	}

	receipt := record.ToReceipt()
	assert.Equal(t, "ORD-5", receipt.OrderID)
	assert.Equal(t, 24000.0, receipt.TotalPrice)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, 2, receipt.Items[0].Quantity)
}
