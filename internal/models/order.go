package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
)

// ReceiptItem is one line on a receipt, snapshotted at checkout and
// decoupled from the live menu and cart.
type ReceiptItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"qty"`
	Price    float64 `json:"price"`
}

// Receipt is the immutable record of a completed order.
type Receipt struct {
	OrderID       string        `json:"order_id"`
	Items         []ReceiptItem `json:"items"`
	TotalPrice    float64       `json:"total_price"`
	Tax           float64       `json:"tax,omitempty"`
	PaymentMethod string        `json:"payment_method"`
	Timestamp     time.Time     `json:"timestamp"`
	Message       string        `json:"message,omitempty"`
}

// receiptEnvelope matches the backend convention of hiding a receipt inside
// a JSON-encoded reply text: {"receipt": {...}}.
type receiptEnvelope struct {
	Receipt *Receipt `json:"receipt"`
}

// DecodeReplyText applies the two-tier decoding contract for bot reply text:
// try to parse the text as JSON, and if it parses and carries a receipt
// object, return it. Any other text, including JSON without a receipt field
// or text that fails to parse, is plain display text.
func DecodeReplyText(text string) (*Receipt, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var env receiptEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil || env.Receipt == nil {
		return nil, false
	}
	if env.Receipt.OrderID == "" {
		return nil, false
	}
	return env.Receipt, true
}

// OrderStatus represents the possible states of a stored order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderRecord is the persisted form of a completed checkout.
type OrderRecord struct {
	gorm.Model
	OrderID         string `gorm:"unique_index"`
	UserID          string `gorm:"index"`
	Items           []OrderItemRecord `gorm:"foreignkey:OrderRecordID"`
	Status          string
	OrderType       string
	CustomerName    string
	CustomerPhone   string
	TableNumber     string
	DeliveryAddress string
	Notes           string
	PaymentMethod   string
	Subtotal        float64
	Tax             float64
	Total           float64
	CompletedAt     time.Time
}

// OrderItemRecord is one persisted line of a stored order.
type OrderItemRecord struct {
	gorm.Model
	OrderRecordID uint `gorm:"index"`
	MenuID        string
	Name          string
	Quantity      int
	UnitPrice     float64
	Notes         string
}

// ToReceipt converts a stored order back into its receipt form.
func (o *OrderRecord) ToReceipt() *Receipt {
	items := make([]ReceiptItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ReceiptItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
		})
	}
	return &Receipt{
		OrderID:       o.OrderID,
		Items:         items,
		TotalPrice:    o.Total,
		Tax:           o.Tax,
		PaymentMethod: o.PaymentMethod,
		Timestamp:     o.CompletedAt,
	}
}
