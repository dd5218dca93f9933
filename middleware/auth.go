package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/route-orders-api/config"
	"github.com/kendall-kelly/route-orders-api/logger"
	"github.com/kendall-kelly/route-orders-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Gin context keys set by the auth middleware
const (
	ContextUserID          = "user_id"
	ContextValidatedClaims = "validated_claims"
	ContextCurrentUser     = "current_user"
)

// NewTokenValidator builds an HS256 validator for tokens signed with the
// configured secret, issuer and audience
func NewTokenValidator(cfg *config.Config) (*validator.Validator, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not configured")
	}

	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) (gin.HandlerFunc, error) {
	jwtValidator, err := NewTokenValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.FromContext(r.Context()).Warn("rejected bearer token", zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			logger.FromContext(r.Context()).Error("failed to write error response", zap.Error(writeErr))
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		validated := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			validated = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set(ContextUserID, token.RegisteredClaims.Subject)
			c.Set(ContextValidatedClaims, token)
			c.Request = r

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !validated {
			c.Abort()
		}
	}, nil
}

// LoadCurrentUser resolves the token subject to a registered user and stores
// it in the context. Unknown subjects are rejected.
func LoadCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := GetUserID(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.(*AuthError).Code, "Authentication required")
			return
		}

		var user models.User
		err = config.GetDB().WithContext(c.Request.Context()).Where("subject = ?", subject).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortWithError(c, http.StatusForbidden, "USER_NOT_FOUND", "User is not registered")
				return
			}
			logger.FromContext(c.Request.Context()).Error("failed to load user", zap.String("subject", subject), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user")
			return
		}

		c.Set(ContextCurrentUser, &user)
		c.Next()
	}
}

// GetUserID extracts the token subject from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetCurrentUser returns the user stored by LoadCurrentUser
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(ContextCurrentUser)
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}
	return user, nil
}

// RequireRole only lets through users holding one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "MISSING_USER", "Authentication required")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions to access this resource")
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
