package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProducts handles GET /api/v1/products - the products that can currently be ordered
func ListProducts(c *gin.Context) {
	products, err := catalog().ListActiveProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", products)
}
