package database

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"siipcoffee/internal/models"
)

var DB *gorm.DB

// InitDB opens the order store and migrates its schema. dialect is
// "sqlite3" or "postgres"; source is the file path or connection string.
func InitDB(dialect, source string) error {
	var err error
	DB, err = gorm.Open(dialect, source)
	if err != nil {
		return fmt.Errorf("open %s database: %w", dialect, err)
	}
	DB.AutoMigrate(&models.OrderRecord{}, &models.OrderItemRecord{})
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// OrderStore persists completed checkouts and reads them back as receipts.
type OrderStore struct {
	db *gorm.DB
}

// NewOrderStore wraps an open gorm handle.
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// SaveOrder stores a completed checkout with its line items.
func (s *OrderStore) SaveOrder(userID string, customer models.CustomerInfo, lines []models.CartLine, receipt *models.Receipt) error {
	record := models.OrderRecord{
		OrderID:         receipt.OrderID,
		UserID:          userID,
		Status:          string(models.OrderStatusCompleted),
		OrderType:       string(customer.OrderType),
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
		TableNumber:     customer.TableNumber,
		DeliveryAddress: customer.DeliveryAddress,
		Notes:           customer.Notes,
		PaymentMethod:   receipt.PaymentMethod,
		Subtotal:        receipt.TotalPrice,
		Tax:             receipt.Tax,
		Total:           receipt.TotalPrice,
		CompletedAt:     receipt.Timestamp,
	}
	if record.CompletedAt.IsZero() {
		record.CompletedAt = time.Now()
	}
	for _, line := range lines {
		record.Items = append(record.Items, models.OrderItemRecord{
			MenuID:    line.ID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			Notes:     line.Notes,
		})
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("save order %s: %w", receipt.OrderID, err)
	}
	return nil
}

// GetOrder loads one stored order by its public order id.
func (s *OrderStore) GetOrder(orderID string) (*models.Receipt, error) {
	var record models.OrderRecord
	if err := s.db.Preload("Items").Where("order_id = ?", orderID).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("order %s not found", orderID)
		}
		return nil, err
	}
	return record.ToReceipt(), nil
}

// ListOrders returns a user's stored orders, newest first.
func (s *OrderStore) ListOrders(userID string) ([]*models.Receipt, error) {
	var records []models.OrderRecord
	if err := s.db.Preload("Items").Where("user_id = ?", userID).Order("created_at desc").Find(&records).Error; err != nil {
		return nil, err
	}
	receipts := make([]*models.Receipt, 0, len(records))
	for i := range records {
		receipts = append(receipts, records[i].ToReceipt())
	}
	return receipts, nil
}
