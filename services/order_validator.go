package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

// Quantity is a line-item quantity as sent by clients, which submit either a
// JSON number or a numeric string. It is parsed during validation so that bad
// quantities are reported together with unknown products.
type Quantity string

// QuantityOf returns the Quantity for n
func QuantityOf(n int) Quantity {
	return Quantity(strconv.Itoa(n))
}

// UnmarshalJSON accepts 3, "3" and null
func (q *Quantity) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*q = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*q = Quantity(strings.TrimSpace(str))
		return nil
	}
	*q = Quantity(s)
	return nil
}

// Int parses the quantity as an integer
func (q Quantity) Int() (int, bool) {
	n, err := strconv.Atoi(string(q))
	return n, err == nil
}

// LineItemInput is one requested product of a new order
type LineItemInput struct {
	ProductID uint     `json:"productId"`
	Quantity  Quantity `json:"quantity"`
}

// ValidateOrderRequest is the input to OrderValidator.Validate
type ValidateOrderRequest struct {
	CustomerID uint
	OrderType  string
	OrderDate  string
	Items      []LineItemInput
}

// PricedLine is a validated line item with the catalog snapshot it will be stored with
type PricedLine struct {
	Product  models.Product
	Quantity int
}

// ValidatedOrder is the output of validation and the input to OrderStore.Create
type ValidatedOrder struct {
	CustomerID  uint            `json:"customer_id"`
	OrderType   string          `json:"order_type"`
	PlacedOn    int64           `json:"placed_on"`
	PlacedDay   string          `json:"placed_day"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []PricedLine    `json:"-"`
}

// OrderValidator checks order business rules and prices orders. It never writes.
type OrderValidator struct {
	db      *gorm.DB
	catalog Catalog
}

// NewOrderValidator creates a validator reading customers/orders from db and products from catalog
func NewOrderValidator(db *gorm.DB, catalog Catalog) *OrderValidator {
	return &OrderValidator{db: db, catalog: catalog}
}

// Validate checks a new order and computes its total from current catalog prices.
// All invalid line items are reported at once.
func (v *OrderValidator) Validate(ctx context.Context, req ValidateOrderRequest) (*ValidatedOrder, error) {
	db := v.db.WithContext(ctx)

	var customer models.User
	err := db.Where("id = ? AND role = ?", req.CustomerID, models.RoleCustomer).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("CUSTOMER_NOT_FOUND", "Customer %d not found", req.CustomerID)
		}
		return nil, storageError(ctx, "load customer", err)
	}

	if err := validateOrderType(req.OrderType); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, invalidArgument("EMPTY_PRODUCTS", "At least one product is required")
	}

	orderDate, err := ParseOrderDate(req.OrderDate)
	if err != nil {
		return nil, err
	}
	dayStart := startOfDay(orderDate)

	exists, err := hasOrderForShift(db, req.CustomerID, req.OrderType, dayStart)
	if err != nil {
		return nil, storageError(ctx, "check existing orders", err)
	}
	if exists {
		return nil, errOrderExists()
	}

	var (
		invalid []string
		lines   = make([]PricedLine, 0, len(req.Items))
		seen    = make(map[uint]bool, len(req.Items))
		total   = decimal.Zero
	)
	for _, item := range req.Items {
		id := strconv.FormatUint(uint64(item.ProductID), 10)

		qty, ok := item.Quantity.Int()
		if !ok || qty <= 0 || seen[item.ProductID] {
			invalid = append(invalid, id)
			continue
		}
		seen[item.ProductID] = true

		product, err := v.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if IsKind(err, KindNotFound) {
				invalid = append(invalid, id)
				continue
			}
			return nil, err
		}

		lines = append(lines, PricedLine{Product: *product, Quantity: qty})
		total = total.Add(LineAmount(product.Price, qty))
	}

	if len(invalid) > 0 {
		e := invalidArgument("INVALID_PRODUCTS", "Invalid products: %s", strings.Join(invalid, ", "))
		e.Details = invalid
		return nil, e
	}

	return &ValidatedOrder{
		CustomerID:  req.CustomerID,
		OrderType:   req.OrderType,
		PlacedOn:    orderDate.Unix(),
		PlacedDay:   dayStart.Format(dayLayout),
		TotalAmount: total,
		Lines:       lines,
	}, nil
}

func validateOrderType(orderType string) error {
	switch orderType {
	case models.OrderTypeAM, models.OrderTypePM:
		return nil
	}
	return invalidArgument("INVALID_ORDER_TYPE", "orderType must be AM or PM")
}

func errOrderExists() *OrderError {
	return conflict("ORDER_EXISTS", "Order already exists for this type on this date")
}

// ParseOrderDate accepts YYYY-MM-DD, RFC3339 or epoch seconds and returns the time in UTC
func ParseOrderDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, invalidArgument("INVALID_ORDER_DATE", "orderDate is required")
	}
	if t, err := time.Parse(dayLayout, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, invalidArgument("INVALID_ORDER_DATE", "orderDate %q is not a valid date", raw)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// hasOrderForShift reports whether the customer already has an order of this
// type placed within the UTC day starting at dayStart
func hasOrderForShift(db *gorm.DB, customerID uint, orderType string, dayStart time.Time) (bool, error) {
	dayEnd := dayStart.Add(24*time.Hour - time.Second)
	var count int64
	err := db.Model(&models.Order{}).
		Where("customer_id = ? AND order_type = ? AND placed_on BETWEEN ? AND ?",
			customerID, orderType, dayStart.Unix(), dayEnd.Unix()).
		Count(&count).Error
	return count > 0, err
}
