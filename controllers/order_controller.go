package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/route-orders-api/config"
	"github.com/kendall-kelly/route-orders-api/services"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest represents the request body for placing an order
type PlaceOrderRequest struct {
	Products  []services.LineItemInput `json:"products"`
	OrderType string                   `json:"orderType" binding:"required"`
	OrderDate string                   `json:"orderDate" binding:"required"`
}

// UpdateOrderRequest represents the request body for editing an order
type UpdateOrderRequest struct {
	OrderID     uint                    `json:"orderId" binding:"required"`
	Products    []services.LineItemEdit `json:"products"`
	TotalAmount *decimal.Decimal        `json:"totalAmount"`
}

func catalog() services.Catalog {
	if c := services.GetCatalog(); c != nil {
		return c
	}
	return services.NewGormCatalog(config.GetDB())
}

func orderStore() *services.OrderStore {
	return services.NewOrderStore(config.GetDB())
}

func editTotalPolicy() string {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg.EditTotalPolicy
	}
	return config.EditTotalClient
}

// PlaceOrder handles POST /api/v1/orders/place - validates, prices and stores a new order
func PlaceOrder(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	validated, err := services.NewOrderValidator(config.GetDB(), catalog()).Validate(ctx, services.ValidateOrderRequest{
		CustomerID: customerID,
		OrderType:  req.OrderType,
		OrderDate:  req.OrderDate,
		Items:      req.Products,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := orderStore().Create(ctx, validated)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Order placed successfully", order)
}

// CheckOrder handles GET /api/v1/orders/check - validates and prices an order without placing it
func CheckOrder(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}

	var body struct {
		Products []services.LineItemInput `json:"products"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidationError(c, err)
			return
		}
	}

	validated, err := services.NewOrderValidator(config.GetDB(), catalog()).Validate(c.Request.Context(), services.ValidateOrderRequest{
		CustomerID: customerID,
		OrderType:  c.Query("orderType"),
		OrderDate:  c.Query("orderDate"),
		Items:      body.Products,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Order can be placed", validated)
}

// GetOrder handles GET /api/v1/orders/order?orderId= - returns one of the customer's orders
func GetOrder(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId", c.Query("orderId"))
	if !ok {
		return
	}

	order, err := orderStore().GetForCustomer(c.Request.Context(), customerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", order)
}

// ListOrders handles GET /api/v1/orders/all - returns the customer's orders newest first
func ListOrders(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}

	orders, err := orderStore().ListForCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", orders)
}

// ToggleDelivered handles POST /api/v1/orders/toggleStatus?orderId= - marks an order delivered
func ToggleDelivered(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId", c.Query("orderId"))
	if !ok {
		return
	}

	order, err := orderStore().MarkDelivered(c.Request.Context(), customerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Order marked as delivered", order)
}

// UpdateOrder handles POST /api/v1/orders/order_update - applies an order edit
func UpdateOrder(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	editor := services.NewOrderEditor(config.GetDB(), catalog(), editTotalPolicy())
	order, err := editor.ApplyEdit(c.Request.Context(), services.EditOrderRequest{
		CustomerID:  customerID,
		OrderID:     req.OrderID,
		Items:       req.Products,
		ClientTotal: req.TotalAmount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Order updated successfully", order)
}

// DeleteOrderProduct handles DELETE /api/v1/orders/delete_order_product/:orderProductId
func DeleteOrderProduct(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}
	orderProductID, ok := parseIDParam(c, "orderProductId", c.Param("orderProductId"))
	if !ok {
		return
	}

	editor := services.NewOrderEditor(config.GetDB(), catalog(), editTotalPolicy())
	if err := editor.DeleteLineItem(c.Request.Context(), customerID, orderProductID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Product removed from order", gin.H{"order_product_id": orderProductID})
}

// CancelOrder handles POST /api/v1/orders/cancel_order/:orderId - removes every line item
func CancelOrder(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId", c.Param("orderId"))
	if !ok {
		return
	}

	order, err := orderStore().Cancel(c.Request.Context(), customerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Order cancelled", order)
}

// ListShiftOrders handles GET /api/v1/admin/orders?date=&orderType= - every order of one day
func ListShiftOrders(c *gin.Context) {
	raw := c.Query("date")
	day := time.Now().UTC()
	if raw != "" {
		parsed, err := services.ParseOrderDate(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		day = parsed
	}

	orders, err := orderStore().ListByShift(c.Request.Context(), day, c.Query("orderType"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", orders)
}
