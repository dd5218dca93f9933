package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/route-orders-api/config"
	"github.com/kendall-kelly/route-orders-api/services"
)

// ReportDefectRequest represents the request body for reporting defective products
type ReportDefectRequest struct {
	OrderID           uint                   `json:"orderId" binding:"required"`
	DefectiveProducts []services.DefectInput `json:"defectiveProducts"`
}

func defectService() *services.DefectService {
	return services.NewDefectService(config.GetDB(), services.GetImageService())
}

// ReportDefect handles POST /api/v1/orders/report - records defect reports for an undelivered order
func ReportDefect(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}

	var req ReportDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	defects, err := defectService().Report(c.Request.Context(), customerID, req.OrderID, req.DefectiveProducts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Defect report submitted", gin.H{
		"count":   len(defects),
		"defects": defects,
	})
}

// ListMyDefects handles GET /api/v1/defects - the customer's defect reports, optionally for one order
func ListMyDefects(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}

	filter := services.DefectFilter{CustomerID: customerID}
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

// UploadDefectImage handles POST /api/v1/defects/:reportId/image - attaches an evidence photo
func UploadDefectImage(c *gin.Context) {
	customerID, ok := actingCustomerID(c)
	if !ok {
		return
	}
	reportID, ok := parseIDParam(c, "reportId", c.Param("reportId"))
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "An image file is required", err.Error())
		return
	}

	if services.GetImageService() == nil {
		respondError(c, http.StatusServiceUnavailable, "IMAGE_STORAGE_DISABLED", "Image storage is not configured", nil)
		return
	}

	defect, err := defectService().AttachImage(c.Request.Context(), customerID, reportID, fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Image uploaded", defect)
}
