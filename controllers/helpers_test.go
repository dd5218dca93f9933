package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/route-orders-api/middleware"
	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/kendall-kelly/route-orders-api/services"
	"github.com/kendall-kelly/route-orders-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	customer *models.User
	other    *models.User
	admin    *models.User
	milk     *models.Product
	bread    *models.Product
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	services.SetCatalog(nil)
	services.SetImageService(nil)

	db := testutil.NewTestDB(t)
	return &testEnv{
		db:       db,
		customer: testutil.CreateCustomer(t, db, "customer-42"),
		other:    testutil.CreateCustomer(t, db, "customer-7"),
		admin:    testutil.CreateUser(t, db, "admin-1", models.RoleAdmin),
		milk:     testutil.CreateProduct(t, db, "Milk 1L", "Dairy", "50.00"),
		bread:    testutil.CreateProduct(t, db, "Bread", "Bakery", "12.50"),
	}
}

// newTestRouter mirrors the production routes with mock authentication as user
func newTestRouter(user *models.User) *gin.Engine {
	router := gin.New()
	v1 := router.Group("/api/v1", testutil.MockAuthMiddleware(user))

	v1.GET("/users/me", GetMyProfile)
	v1.GET("/products", ListProducts)

	orders := v1.Group("/orders")
	orders.POST("/place", PlaceOrder)
	orders.GET("/check", CheckOrder)
	orders.GET("/order", GetOrder)
	orders.GET("/all", ListOrders)
	orders.POST("/toggleStatus", ToggleDelivered)
	orders.POST("/report", ReportDefect)
	orders.POST("/order_update", UpdateOrder)
	orders.DELETE("/delete_order_product/:orderProductId", DeleteOrderProduct)
	orders.POST("/cancel_order/:orderId", CancelOrder)

	v1.GET("/defects", ListMyDefects)
	v1.POST("/defects/:reportId/image", UploadDefectImage)

	admin := v1.Group("/admin", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
	admin.POST("/approveDefect", ApproveDefect)
	admin.POST("/update-order-status", UpdateOrderStatus)
	admin.POST("/update-delivery-status", UpdateDeliveryStatus)
	admin.POST("/loading-slip", MarkLoadingSlip)
	admin.GET("/orders", ListShiftOrders)
	admin.GET("/orders/:orderId", GetAnyOrder)
	admin.GET("/defects", ListOrderDefects)

	return router
}

// doJSON performs a request as user and decodes the JSON envelope
func doJSON(t *testing.T, user *models.User, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	newTestRouter(user).ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return w.Code, response
}

func errorCode(response map[string]interface{}) string {
	errBody, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", response["data"])
	return data
}

// placeOrder places an order through the API and returns its id
func (env *testEnv) placeOrder(t *testing.T, user *models.User, orderType, date string, products ...map[string]interface{}) uint {
	t.Helper()
	status, response := doJSON(t, user, http.MethodPost, "/api/v1/orders/place", map[string]interface{}{
		"products":  products,
		"orderType": orderType,
		"orderDate": date,
	})
	require.Equal(t, http.StatusCreated, status, "response: %v", response)
	return uint(dataMap(t, response)["id"].(float64))
}

func product(id uint, qty interface{}) map[string]interface{} {
	return map[string]interface{}{"productId": id, "quantity": qty}
}

// assertAmount compares a JSON encoded decimal with the expected value
func assertAmount(t *testing.T, expected string, actual interface{}) {
	t.Helper()
	raw, ok := actual.(string)
	require.True(t, ok, "amount is not a string: %v", actual)
	got, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString(expected).Equal(got), "expected %s, got %s", expected, raw)
}
