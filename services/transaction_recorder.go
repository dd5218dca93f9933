package services

import (
	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordPendingCOD appends a pending cash-on-delivery payment row for a newly
// placed order. Must run inside the order's creation transaction.
func RecordPendingCOD(tx *gorm.DB, orderID, customerID uint, amount decimal.Decimal) (*models.Transaction, error) {
	txn := &models.Transaction{
		OrderID:        orderID,
		CustomerID:     customerID,
		Amount:         amount,
		PaymentGateway: models.PaymentGatewayCOD,
		PaymentStatus:  models.PaymentStatusPending,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}
