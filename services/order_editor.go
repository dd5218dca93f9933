package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/kendall-kelly/route-orders-api/config"
	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineItemEdit is one entry of an order edit. New entries add a product to
// the order; the others overwrite the quantity (and optionally the price) of
// an existing line item.
type LineItemEdit struct {
	ProductID uint             `json:"productId"`
	Quantity  Quantity         `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	IsNew     bool             `json:"isNew"`
}

// EditOrderRequest is the input to OrderEditor.ApplyEdit
type EditOrderRequest struct {
	CustomerID  uint
	OrderID     uint
	Items       []LineItemEdit
	ClientTotal *decimal.Decimal
}

// OrderEditor applies customer and operator edits to existing orders
type OrderEditor struct {
	db          *gorm.DB
	catalog     Catalog
	totalPolicy string
}

// NewOrderEditor creates an editor. totalPolicy is config.EditTotalClient or
// config.EditTotalRecompute; anything else means client.
func NewOrderEditor(db *gorm.DB, catalog Catalog, totalPolicy string) *OrderEditor {
	if totalPolicy != config.EditTotalRecompute {
		totalPolicy = config.EditTotalClient
	}
	return &OrderEditor{db: db, catalog: catalog, totalPolicy: totalPolicy}
}

type parsedEdit struct {
	LineItemEdit
	quantity int
	product  *models.Product
}

// ApplyEdit applies every item of req to the order in one transaction.
//
// An empty item list cancels the order. Otherwise the order total becomes the
// client supplied total, or the sum of the line items when the editor
// recomputes totals (or no client total was sent). The order is always
// marked altered, and stays cancelled if it had no line items before the edit.
func (e *OrderEditor) ApplyEdit(ctx context.Context, req EditOrderRequest) (*models.Order, error) {
	if req.ClientTotal != nil && req.ClientTotal.IsNegative() {
		return nil, invalidArgument("INVALID_TOTAL", "totalAmount must not be negative")
	}

	edits, err := e.prepare(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = WithTransaction(ctx, e.db, "update order", func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND customer_id = ?", req.OrderID, req.CustomerID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOrderNotFound()
			}
			return err
		}

		if len(edits) == 0 {
			return cancelOrder(tx, &order, map[string]interface{}{"altered": models.FlagYes})
		}

		var preEditLines int64
		if err := tx.Model(&models.OrderProduct{}).Where("order_id = ?", order.ID).Count(&preEditLines).Error; err != nil {
			return err
		}

		for _, edit := range edits {
			if edit.IsNew {
				err = addLineItem(tx, order.ID, edit)
			} else {
				err = updateLineItem(tx, order.ID, edit)
			}
			if err != nil {
				return err
			}
		}

		cancelled := models.FlagNo
		if preEditLines == 0 {
			cancelled = models.FlagYes
		}

		var total decimal.Decimal
		if e.totalPolicy == config.EditTotalClient && req.ClientTotal != nil {
			total = *req.ClientTotal
		} else {
			var lines []models.OrderProduct
			if err := tx.Where("order_id = ?", order.ID).Find(&lines).Error; err != nil {
				return err
			}
			total = SumLineItems(lines)
		}

		return tx.Model(&order).Updates(map[string]interface{}{
			"total_amount": total,
			"cancelled":    cancelled,
			"altered":      models.FlagYes,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return NewOrderStore(e.db).GetForCustomer(ctx, req.CustomerID, req.OrderID)
}

// prepare parses quantities and resolves catalog products for new entries
// before the transaction opens
func (e *OrderEditor) prepare(ctx context.Context, items []LineItemEdit) ([]parsedEdit, error) {
	edits := make([]parsedEdit, 0, len(items))
	for _, item := range items {
		qty, ok := item.Quantity.Int()
		if !ok || qty < 0 || (item.IsNew && qty == 0) {
			return nil, invalidArgument("INVALID_QUANTITY", "Invalid quantity %q for product %d", string(item.Quantity), item.ProductID)
		}
		if item.Price != nil && item.Price.IsNegative() {
			return nil, invalidArgument("INVALID_PRICE", "Invalid price for product %d", item.ProductID)
		}

		edit := parsedEdit{LineItemEdit: item, quantity: qty}
		if item.IsNew {
			product, err := e.catalog.GetProduct(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			edit.product = product
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

func addLineItem(tx *gorm.DB, orderID uint, edit parsedEdit) error {
	var existing int64
	if err := tx.Model(&models.OrderProduct{}).
		Where("order_id = ? AND product_id = ?", orderID, edit.ProductID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return conflict("PRODUCT_EXISTS", "Product %d is already in the order", edit.ProductID)
	}

	price := edit.product.Price
	if edit.Price != nil {
		price = *edit.Price
	}
	line := models.OrderProduct{
		OrderID:   orderID,
		ProductID: edit.ProductID,
		Quantity:  edit.quantity,
		Price:     price,
		Name:      edit.product.Name,
		Category:  edit.product.Category,
		Altered:   models.FlagNo,
	}
	if err := tx.Create(&line).Error; err != nil {
		if isDuplicateKey(err) {
			return conflict("PRODUCT_EXISTS", "Product %d is already in the order", edit.ProductID)
		}
		return err
	}
	return nil
}

func updateLineItem(tx *gorm.DB, orderID uint, edit parsedEdit) error {
	var line models.OrderProduct
	if err := tx.Where("order_id = ? AND product_id = ?", orderID, edit.ProductID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("LINE_ITEM_NOT_FOUND", "Product %d not found in order", edit.ProductID)
		}
		return err
	}

	diff := edit.quantity - line.Quantity
	altered := models.FlagNo
	var quantityChange *string
	if diff != 0 {
		altered = models.FlagYes
		s := strconv.Itoa(diff)
		quantityChange = &s
	}

	updates := map[string]interface{}{
		"quantity":        edit.quantity,
		"altered":         altered,
		"quantity_change": quantityChange,
	}
	if edit.Price != nil {
		updates["price"] = *edit.Price
	}
	return tx.Model(&line).Updates(updates).Error
}

// DeleteLineItem removes a single line item from one of the customer's
// orders. The order total is left unchanged.
func (e *OrderEditor) DeleteLineItem(ctx context.Context, customerID, orderProductID uint) error {
	owned := e.db.Model(&models.Order{}).Select("id").Where("customer_id = ?", customerID)
	res := e.db.WithContext(ctx).
		Where("id = ? AND order_id IN (?)", orderProductID, owned).
		Delete(&models.OrderProduct{})
	if res.Error != nil {
		return storageError(ctx, "delete order product", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("LINE_ITEM_NOT_FOUND", "Order product %d not found", orderProductID)
	}
	return nil
}
