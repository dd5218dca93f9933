package models

import "github.com/shopspring/decimal"

// Payment gateways and states written by order placement
const (
	PaymentGatewayCOD    = "COD"
	PaymentStatusPending = "pending"
)

// Transaction is a payment-tracking row. Orders only ever append pending COD
// rows; reconciliation happens elsewhere.
type Transaction struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderID        uint            `gorm:"not null;index" json:"order_id"`
	CustomerID     uint            `gorm:"not null;index" json:"customer_id"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentGateway string          `gorm:"not null" json:"payment_gateway"`
	PaymentStatus  string          `gorm:"not null" json:"payment_status"`
	CreatedAt      int64           `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// All returns every model, in dependency order, for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&Order{},
		&OrderProduct{},
		&ProductDefect{},
		&Transaction{},
	}
}
