package models

// CartLine is one row in the shopping cart, keyed by menu item id.
type CartLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

// OrderType represents how an order is fulfilled
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeAway OrderType = "take_away"
	OrderTypeDelivery OrderType = "delivery"
)

// Valid reports whether t is one of the known order types.
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeAway, OrderTypeDelivery:
		return true
	}
	return false
}

// PaymentMethod represents how an order is paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodEWallet  PaymentMethod = "e_wallet"
	PaymentMethodCrypto   PaymentMethod = "crypto"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is one of the accepted payment methods.
// e_wallet and crypto are both accepted; the older storefront called
// the wallet payment "crypto".
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodEWallet, PaymentMethodCrypto, PaymentMethodTransfer:
		return true
	}
	return false
}

// CustomerInfo holds the session-scoped order metadata captured at checkout.
type CustomerInfo struct {
	Name            string        `json:"customer_name"`
	Phone           string        `json:"customer_phone,omitempty"`
	OrderType       OrderType     `json:"order_type"`
	TableNumber     string        `json:"table_number,omitempty"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
}

// DefaultCustomerInfo returns the customer fields a fresh session starts with.
func DefaultCustomerInfo() CustomerInfo {
	return CustomerInfo{
		OrderType:     OrderTypeDineIn,
		PaymentMethod: PaymentMethodCash,
	}
}
