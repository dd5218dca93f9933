package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStore persists orders, their line items and the payment row created
// with them
type OrderStore struct {
	db *gorm.DB
}

// NewOrderStore creates an order store
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create persists a validated order in a single transaction: the order row,
// one line item per priced line and a pending COD transaction for the total.
// The duplicate check is repeated inside the transaction and the
// (customer, type, day) unique index turns a lost race into a Conflict.
func (s *OrderStore) Create(ctx context.Context, v *ValidatedOrder) (*models.Order, error) {
	if v == nil || len(v.Lines) == 0 {
		return nil, invalidArgument("EMPTY_PRODUCTS", "At least one product is required")
	}

	order := &models.Order{
		CustomerID:     v.CustomerID,
		OrderType:      v.OrderType,
		PlacedOn:       v.PlacedOn,
		PlacedDay:      v.PlacedDay,
		TotalAmount:    v.TotalAmount,
		DeliveryStatus: models.DeliveryPending,
		ApproveStatus:  models.ApprovePending,
		Cancelled:      models.FlagNo,
		Altered:        models.FlagNo,
		LoadingSlip:    models.FlagNo,
	}

	err := WithTransaction(ctx, s.db, "place order", func(tx *gorm.DB) error {
		dayStart := time.Unix(v.PlacedOn, 0).UTC()
		exists, err := hasOrderForShift(tx, v.CustomerID, v.OrderType, startOfDay(dayStart))
		if err != nil {
			return err
		}
		if exists {
			return errOrderExists()
		}

		if err := tx.Omit("Products").Create(order).Error; err != nil {
			if isDuplicateKey(err) {
				return errOrderExists()
			}
			return err
		}

		lines := make([]models.OrderProduct, 0, len(v.Lines))
		for _, l := range v.Lines {
			lines = append(lines, models.OrderProduct{
				OrderID:   order.ID,
				ProductID: l.Product.ID,
				Quantity:  l.Quantity,
				Price:     l.Product.Price,
				Name:      l.Product.Name,
				Category:  l.Product.Category,
				Altered:   models.FlagNo,
			})
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		order.Products = lines

		_, err = RecordPendingCOD(tx, order.ID, order.CustomerID, order.TotalAmount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetForCustomer returns one of the customer's orders with its line items
func (s *OrderStore) GetForCustomer(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	return s.get(ctx, s.db.WithContext(ctx).Where("id = ? AND customer_id = ?", orderID, customerID))
}

// GetByID returns any order with its line items
func (s *OrderStore) GetByID(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.get(ctx, s.db.WithContext(ctx).Where("id = ?", orderID))
}

func (s *OrderStore) get(ctx context.Context, query *gorm.DB) (*models.Order, error) {
	var order models.Order
	err := query.Preload("Products", orderLinesByID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound()
		}
		return nil, storageError(ctx, "load order", err)
	}
	return &order, nil
}

// ListForCustomer returns the customer's orders newest first
func (s *OrderStore) ListForCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Products", orderLinesByID).
		Where("customer_id = ?", customerID).
		Order("placed_on DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, storageError(ctx, "list orders", err)
	}
	return orders, nil
}

// ListByShift returns every order placed on the UTC day of day, optionally
// restricted to one shift (orderType "" means both)
func (s *OrderStore) ListByShift(ctx context.Context, day time.Time, orderType string) ([]models.Order, error) {
	query := s.db.WithContext(ctx).
		Preload("Products", orderLinesByID).
		Where("placed_day = ?", startOfDay(day).Format(dayLayout))
	if orderType != "" {
		if err := validateOrderType(orderType); err != nil {
			return nil, err
		}
		query = query.Where("order_type = ?", orderType)
	}

	var orders []models.Order
	if err := query.Order("customer_id, order_type").Find(&orders).Error; err != nil {
		return nil, storageError(ctx, "list orders", err)
	}
	return orders, nil
}

// MarkDelivered moves one of the customer's orders from pending to delivered
func (s *OrderStore) MarkDelivered(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := WithTransaction(ctx, s.db, "update delivery status", func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND customer_id = ?", orderID, customerID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOrderNotFound()
			}
			return err
		}
		if order.IsDelivered() {
			return conflict("ALREADY_DELIVERED", "Order %d is already delivered", orderID)
		}
		order.DeliveryStatus = models.DeliveryDelivered
		return tx.Model(&order).Update("delivery_status", models.DeliveryDelivered).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetApproveStatus sets approve_status on every listed order. Accepting an
// order also clears its altered flag. Returns the number of orders updated.
func (s *OrderStore) SetApproveStatus(ctx context.Context, orderIDs []uint, status string) (int64, error) {
	if status == "" {
		return 0, invalidArgument("INVALID_STATUS", "status is required")
	}
	updates := map[string]interface{}{"approve_status": status}
	if status == models.ApproveAccepted {
		updates["altered"] = models.FlagNo
	}
	return s.bulkUpdate(ctx, "update approve status", orderIDs, updates)
}

// MarkLoadingSlip flags the listed orders as printed on a loading slip
func (s *OrderStore) MarkLoadingSlip(ctx context.Context, orderIDs []uint) (int64, error) {
	return s.bulkUpdate(ctx, "update loading slip", orderIDs, map[string]interface{}{"loading_slip": models.FlagYes})
}

func (s *OrderStore) bulkUpdate(ctx context.Context, op string, orderIDs []uint, updates map[string]interface{}) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, invalidArgument("EMPTY_ORDER_IDS", "At least one order id is required")
	}

	var affected int64
	err := WithTransaction(ctx, s.db, op, func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id IN ?", orderIDs).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errOrderNotFound()
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

// SetDeliveryStatus sets the delivery status of any order (admin correction)
func (s *OrderStore) SetDeliveryStatus(ctx context.Context, orderID uint, status string) error {
	if status != models.DeliveryPending && status != models.DeliveryDelivered {
		return invalidArgument("INVALID_STATUS", "status must be %s or %s", models.DeliveryPending, models.DeliveryDelivered)
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update("delivery_status", status)
	if res.Error != nil {
		return storageError(ctx, "update delivery status", res.Error)
	}
	if res.RowsAffected == 0 {
		return errOrderNotFound()
	}
	return nil
}

// Cancel removes every line item of one of the customer's orders, zeroes its
// total and marks it cancelled
func (s *OrderStore) Cancel(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := WithTransaction(ctx, s.db, "cancel order", func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND customer_id = ?", orderID, customerID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOrderNotFound()
			}
			return err
		}
		return cancelOrder(tx, &order, nil)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// cancelOrder deletes all line items of order and zeroes its total.
// extra is merged into the order update.
func cancelOrder(tx *gorm.DB, order *models.Order, extra map[string]interface{}) error {
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderProduct{}).Error; err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}

	updates := map[string]interface{}{
		"total_amount": decimal.Zero,
		"cancelled":    models.FlagYes,
	}
	for k, v := range extra {
		updates[k] = v
	}
	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	order.TotalAmount = decimal.Zero
	order.Cancelled = models.FlagYes
	order.Products = []models.OrderProduct{}
	return nil
}

func orderLinesByID(db *gorm.DB) *gorm.DB {
	return db.Order("order_products.id")
}

func errOrderNotFound() *OrderError {
	return notFound("ORDER_NOT_FOUND", "No order found")
}
