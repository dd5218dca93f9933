package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/kendall-kelly/route-orders-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	catalog  Catalog
	customer *models.User
	other    *models.User
	milk     *models.Product
	bread    *models.Product
	eggs     *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	return &fixture{
		db:       db,
		catalog:  NewGormCatalog(db),
		customer: testutil.CreateCustomer(t, db, "customer-42"),
		other:    testutil.CreateCustomer(t, db, "customer-7"),
		milk:     testutil.CreateProduct(t, db, "Milk 1L", "Dairy", "50.00"),
		bread:    testutil.CreateProduct(t, db, "Bread", "Bakery", "12.50"),
		eggs:     testutil.CreateProduct(t, db, "Eggs x12", "Dairy", "30.00"),
	}
}

// placeOrder validates and stores an order for the fixture customer
func (f *fixture) placeOrder(t *testing.T, customerID uint, orderType, date string, items ...LineItemInput) *models.Order {
	t.Helper()
	ctx := context.Background()

	validated, err := NewOrderValidator(f.db, f.catalog).Validate(ctx, ValidateOrderRequest{
		CustomerID: customerID,
		OrderType:  orderType,
		OrderDate:  date,
		Items:      items,
	})
	require.NoError(t, err)

	order, err := NewOrderStore(f.db).Create(ctx, validated)
	require.NoError(t, err)
	return order
}

func item(productID uint, qty int) LineItemInput {
	return LineItemInput{ProductID: productID, Quantity: QuantityOf(qty)}
}

func (f *fixture) reloadOrder(t *testing.T, orderID uint) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, f.db.Preload("Products", orderLinesByID).First(&order, orderID).Error)
	return order
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func assertKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
