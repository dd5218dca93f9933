package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/route-orders-api/services"
)

// ApproveDefectRequest represents the request body for approving a defect report
type ApproveDefectRequest struct {
	ReportID uint `json:"reportId" binding:"required"`
	OrderID  uint `json:"orderId" binding:"required"`
}

// UpdateOrderStatusRequest sets approve_status on one or more orders
type UpdateOrderStatusRequest struct {
	OrderIDs []uint `json:"orderIds" binding:"required,min=1"`
	Status   string `json:"status" binding:"required"`
}

// UpdateDeliveryStatusRequest sets the delivery status of one order
type UpdateDeliveryStatusRequest struct {
	OrderID uint   `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required,oneof=pending delivered"`
}

// LoadingSlipRequest flags orders as printed on a loading slip
type LoadingSlipRequest struct {
	OrderIDs []uint `json:"orderIds" binding:"required,min=1"`
}

// ApproveDefect handles POST /api/v1/admin/approveDefect - applies a defect report to its order
func ApproveDefect(c *gin.Context) {
	var req ApproveDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := defectService().Approve(c.Request.Context(), req.ReportID, req.OrderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Defect approved", result)
}

// GetAnyOrder handles GET /api/v1/admin/orders/:orderId - any customer's order
func GetAnyOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId", c.Param("orderId"))
	if !ok {
		return
	}

	order, err := orderStore().GetByID(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", order)
}

// ListOrderDefects handles GET /api/v1/admin/defects?orderId= - defect reports across customers
func ListOrderDefects(c *gin.Context) {
	var filter services.DefectFilter
	if raw := c.Query("orderId"); raw != "" {
		orderID, ok := parseIDParam(c, "orderId", raw)
		if !ok {
			return
		}
		filter.OrderID = orderID
	}

	defects, err := defectService().ListDefects(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", defects)
}

// UpdateOrderStatus handles POST /api/v1/admin/update-order-status
func UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updated, err := orderStore().SetApproveStatus(c.Request.Context(), req.OrderIDs, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Order status updated", gin.H{"updated": updated})
}

// UpdateDeliveryStatus handles POST /api/v1/admin/update-delivery-status
func UpdateDeliveryStatus(c *gin.Context) {
	var req UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := orderStore().SetDeliveryStatus(c.Request.Context(), req.OrderID, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Delivery status updated", gin.H{"order_id": req.OrderID, "delivery_status": req.Status})
}

// MarkLoadingSlip handles POST /api/v1/admin/loading-slip
func MarkLoadingSlip(c *gin.Context) {
	var req LoadingSlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updated, err := orderStore().MarkLoadingSlip(c.Request.Context(), req.OrderIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Loading slip recorded", gin.H{"updated": updated})
}
