package models

import (
	"github.com/shopspring/decimal"
)

// Order shifts
const (
	OrderTypeAM = "AM"
	OrderTypePM = "PM"
)

// Delivery states
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
)

// Approval states. approve_status is free text; these are the values the
// service itself writes or reacts to.
const (
	ApprovePending  = "Pending"
	ApproveAccepted = "Accepted"
	ApproveAltered  = "Altered"
)

// Yes/No flags used by cancelled, altered and loading_slip
const (
	FlagYes = "Yes"
	FlagNo  = "No"
)

// LineStatusApproved marks a line item reduced by an approved defect report
const LineStatusApproved = "approved"

// Order represents one AM or PM order of a customer for a business day.
// Timestamps are epoch seconds.
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CustomerID     uint            `gorm:"not null;uniqueIndex:idx_orders_customer_type_day,priority:1" json:"customer_id"`
	OrderType      string          `gorm:"size:2;not null;uniqueIndex:idx_orders_customer_type_day,priority:2" json:"order_type"`  // AM, PM
	PlacedDay      string          `gorm:"size:10;not null;uniqueIndex:idx_orders_customer_type_day,priority:3" json:"placed_day"` // UTC YYYY-MM-DD of placed_on
	PlacedOn       int64           `gorm:"not null;index" json:"placed_on"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	DeliveryStatus string          `gorm:"not null;default:'pending'" json:"delivery_status"` // pending, delivered
	ApproveStatus  string          `gorm:"not null;default:'Pending'" json:"approve_status"`
	Cancelled      string          `gorm:"size:3;not null;default:'No'" json:"cancelled"`
	Altered        string          `gorm:"size:3;not null;default:'No'" json:"altered"`
	LoadingSlip    string          `gorm:"size:3;not null;default:'No'" json:"loading_slip"`
	Products       []OrderProduct  `gorm:"foreignKey:OrderID" json:"products"`
	CreatedAt      int64           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      int64           `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsDelivered reports whether the order has been marked delivered
func (o Order) IsDelivered() bool {
	return o.DeliveryStatus == DeliveryDelivered
}

// OrderProduct is a line item of an order. Price, name and category are a
// snapshot of the catalog taken when the line was created.
type OrderProduct struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderID        uint            `gorm:"not null;uniqueIndex:idx_order_products_order_product,priority:1" json:"order_id"`
	ProductID      uint            `gorm:"not null;uniqueIndex:idx_order_products_order_product,priority:2" json:"product_id"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Name           string          `gorm:"not null;default:''" json:"name"`
	Category       string          `gorm:"not null;default:''" json:"category"`
	Altered        string          `gorm:"size:3;not null;default:'No'" json:"altered"`
	QuantityChange *string         `json:"quantity_change"` // signed delta of the last edit, audit only
	Status         string          `gorm:"not null;default:''" json:"status"`
	CreatedAt      int64           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      int64           `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the OrderProduct model
func (OrderProduct) TableName() string {
	return "order_products"
}

// LineTotal returns quantity * price
func (p OrderProduct) LineTotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
