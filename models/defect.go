package models

// Defect report states
const (
	DefectPending  = "pending"
	DefectApproved = "approved"
)

// ProductDefect is a customer claim that part of a line item was defective.
// It references a line item by (order_id, product_id) but does not own it.
type ProductDefect struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	OrderID           uint    `gorm:"not null;index" json:"order_id"`
	ProductID         uint    `gorm:"not null" json:"product_id"`
	CustomerID        uint    `gorm:"not null;index" json:"customer_id"`
	ReportDescription string  `gorm:"type:text" json:"report_description"`
	Quantity          int     `gorm:"not null" json:"quantity"`
	Status            string  `gorm:"not null;default:'pending'" json:"status"` // pending, approved
	ImageS3Key        *string `json:"image_s3_key"`                             // nullable, evidence photo
	ImageURL          *string `gorm:"-" json:"image_url,omitempty"`             // presigned URL, computed on read
	CreatedAt         int64   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         int64   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the ProductDefect model
func (ProductDefect) TableName() string {
	return "product_defects"
}
