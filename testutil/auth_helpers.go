package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/route-orders-api/middleware"
	"github.com/kendall-kelly/route-orders-api/models"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "route-orders-api",
			Subject: subject,
		},
	}
}

// MockAuthMiddleware authenticates every request as user, skipping token validation
func MockAuthMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, user.Subject)
		c.Set(middleware.ContextValidatedClaims, MockValidatedClaims(user.Subject))
		c.Set(middleware.ContextCurrentUser, user)
		c.Next()
	}
}
