package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"siipcoffee/internal/chat"
	"siipcoffee/internal/models"
)

// TaxRate is applied once on top of the cart subtotal. The receipt keeps
// subtotal and tax as separate fields so the total is never re-taxed.
const TaxRate = 0.10

// ValidationError reports a checkout field the customer still has to fill
// in. Its message is shown to the customer verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Submitter sends an assembled order payload to the ordering backend.
// *backend.Client satisfies it.
type Submitter interface {
	SubmitOrder(ctx context.Context, payload any) (*models.Receipt, error)
}

// Repository persists completed checkouts. A nil repository skips
// persistence.
type Repository interface {
	SaveOrder(userID string, customer models.CustomerInfo, lines []models.CartLine, receipt *models.Receipt) error
}

// PayloadItem is one cart line in the order payload sent to the backend.
type PayloadItem struct {
	MenuID   string `json:"menu_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// OrderPayload is the wire form of an assembled checkout.
type OrderPayload struct {
	Items           []PayloadItem        `json:"items"`
	OrderType       models.OrderType     `json:"order_type"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone,omitempty"`
	TableNumber     string               `json:"table_number,omitempty"`
	DeliveryAddress string               `json:"delivery_address,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
}

// Assembler turns a session's cart and customer info into a submitted
// order. Checkout is atomic: on any failure the cart is left exactly as it
// was, and the cart is cleared only after the backend accepted the order.
type Assembler struct {
	submitter Submitter
	repo      Repository
}

// NewAssembler creates an assembler. repo may be nil.
func NewAssembler(submitter Submitter, repo Repository) *Assembler {
	return &Assembler{submitter: submitter, repo: repo}
}

// Checkout validates the session's cart and customer info, submits the
// order, persists the receipt, clears the cart and appends a confirmation
// message to the chat log. Validation failures are reported in a fixed
// order with per-field messages and happen before any network call.
func (a *Assembler) Checkout(ctx context.Context, sess *chat.Session) (*models.Receipt, error) {
	store := sess.Cart()
	customer := store.Customer()
	customer.Name = strings.TrimSpace(customer.Name)
	customer.TableNumber = strings.TrimSpace(customer.TableNumber)
	customer.DeliveryAddress = strings.TrimSpace(customer.DeliveryAddress)

	if store.Empty() {
		return nil, &ValidationError{Field: "items", Message: "Your cart is empty"}
	}
	if customer.Name == "" {
		return nil, &ValidationError{Field: "customer_name", Message: "Please enter your name"}
	}
	if customer.OrderType == models.OrderTypeDineIn && customer.TableNumber == "" {
		return nil, &ValidationError{Field: "table_number", Message: "Please enter table number for dine-in"}
	}
	if customer.OrderType == models.OrderTypeDelivery && customer.DeliveryAddress == "" {
		return nil, &ValidationError{Field: "delivery_address", Message: "Please enter delivery address"}
	}

	lines := store.Lines()
	subtotal := store.TotalPrice()
	payload := buildPayload(lines, customer)

	receipt, err := a.submitter.SubmitOrder(ctx, payload)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		receipt = snapshotReceipt(lines, subtotal, customer)
	}
	if receipt.Tax == 0 {
		receipt.Tax = receipt.TotalPrice * TaxRate
	}
	if receipt.Timestamp.IsZero() {
		receipt.Timestamp = time.Now()
	}

	if a.repo != nil {
		if err := a.repo.SaveOrder(sess.UserID, customer, lines, receipt); err != nil {
			log.Printf("Failed to persist order %s: %v", receipt.OrderID, err)
		}
	}

	store.Clear()
	sess.Append(models.ChatMessage{
		Sender:  models.SenderBot,
		Text:    confirmationText(receipt),
		Receipt: receipt,
	})
	return receipt, nil
}

func buildPayload(lines []models.CartLine, customer models.CustomerInfo) OrderPayload {
	items := make([]PayloadItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, PayloadItem{
			MenuID:   line.ID,
			Quantity: line.Quantity,
			Notes:    line.Notes,
		})
	}
	return OrderPayload{
		Items:           items,
		OrderType:       customer.OrderType,
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
		TableNumber:     customer.TableNumber,
		DeliveryAddress: customer.DeliveryAddress,
		Notes:           customer.Notes,
		PaymentMethod:   customer.PaymentMethod,
	}
}

// snapshotReceipt builds a local receipt when the backend accepted the
// order without returning one.
func snapshotReceipt(lines []models.CartLine, subtotal float64, customer models.CustomerInfo) *models.Receipt {
	items := make([]models.ReceiptItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.ReceiptItem{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}
	return &models.Receipt{
		OrderID:       uuid.New().String(),
		Items:         items,
		TotalPrice:    subtotal,
		PaymentMethod: string(customer.PaymentMethod),
		Timestamp:     time.Now(),
	}
}

func confirmationText(receipt *models.Receipt) string {
	if receipt.Message != "" {
		return receipt.Message
	}
	return fmt.Sprintf("Thank you! Order %s is confirmed. Total: %.0f (tax %.0f).",
		receipt.OrderID, receipt.TotalPrice, receipt.Tax)
}
