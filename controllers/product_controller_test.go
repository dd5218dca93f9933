package controllers

import (
	"net/http"
	"testing"

	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/kendall-kelly/route-orders-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProducts(t *testing.T) {
	env := setupTestEnv(t)
	retired := testutil.CreateProduct(t, env.db, "Butter", "Dairy", "80.00")
	require.NoError(t, env.db.Model(&models.Product{}).Where("id = ?", retired.ID).Update("active", false).Error)

	status, response := doJSON(t, env.customer, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, status)

	products := response["data"].([]interface{})
	require.Len(t, products, 2)
	assert.Equal(t, "Milk 1L", products[0].(map[string]interface{})["name"])
	assert.Equal(t, "Bread", products[1].(map[string]interface{})["name"])
}
