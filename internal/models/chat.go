package models

import "time"

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one turn in a chat session. Messages are append-only and
// never mutated after creation.
type ChatMessage struct {
	ID             string          `json:"id"`
	Sender         Sender          `json:"sender"`
	Text           string          `json:"text"`
	Timestamp      time.Time       `json:"timestamp"`
	Intent         string          `json:"intent,omitempty"`
	SuggestedItems []SuggestedItem `json:"suggested_items,omitempty"`
	MenuData       Catalog         `json:"menu_data,omitempty"`
	OrderIntent    *OrderIntent    `json:"order_intent,omitempty"`
	Receipt        *Receipt        `json:"receipt,omitempty"`
}

// OrderIntent is a structured instruction describing cart-affecting actions
// derived from a chat message, produced by the NLP backend or the local
// keyword fallback.
type OrderIntent struct {
	Action    string            `json:"action"`
	Items     []OrderIntentItem `json:"items,omitempty"`
	OrderType string            `json:"order_type,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

// OrderIntentItem is one requested line inside an order intent.
type OrderIntentItem struct {
	MenuID   string  `json:"menu_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

// ActionCreateOrder is the only order intent action the interpreter applies.
const ActionCreateOrder = "create_order"

// ChatReply is the backend's answer to a chat turn.
type ChatReply struct {
	Response       string          `json:"response"`
	Intent         string          `json:"intent,omitempty"`
	SuggestedItems []SuggestedItem `json:"suggested_items,omitempty"`
	MenuData       Catalog         `json:"menu_data,omitempty"`
	OrderIntent    *OrderIntent    `json:"order_intent,omitempty"`
}

// WSEnvelope is the JSON envelope carried on the duplex channel.
type WSEnvelope struct {
	Success bool       `json:"success"`
	Data    *WSPayload `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// WSPayload is the inner payload of a successful envelope.
type WSPayload struct {
	Message     string       `json:"message"`
	Intent      string       `json:"intent,omitempty"`
	OrderIntent *OrderIntent `json:"order_intent,omitempty"`
	SessionID   string       `json:"session_id,omitempty"`
}
