package services

import (
	"fmt"

	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineAmount returns price * quantity
func LineAmount(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// SumLineItems totals quantity * snapshot price over the given line items
func SumLineItems(lines []models.OrderProduct) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// recomputeOrderTotal sums the live line items of an order and persists the
// result. An order left with no line items gets a zero total and is marked
// cancelled. Must run inside the caller's transaction.
func recomputeOrderTotal(tx *gorm.DB, orderID uint) (decimal.Decimal, int, error) {
	var lines []models.OrderProduct
	if err := tx.Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
		return decimal.Zero, 0, fmt.Errorf("load line items: %w", err)
	}

	total := SumLineItems(lines)
	updates := map[string]interface{}{"total_amount": total}
	if len(lines) == 0 {
		updates["cancelled"] = models.FlagYes
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
		return decimal.Zero, 0, fmt.Errorf("update order total: %w", err)
	}
	return total, len(lines), nil
}
