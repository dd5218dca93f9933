package services

import (
	"context"
	"errors"

	"github.com/kendall-kelly/route-orders-api/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WithTransaction runs fn inside a database transaction. The transaction is
// committed when fn returns nil and rolled back on any error or panic.
// Errors that are not already *OrderError are logged and wrapped as internal.
func WithTransaction(ctx context.Context, db *gorm.DB, op string, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}

	var oe *OrderError
	if errors.As(err, &oe) {
		return err
	}
	logger.FromContext(ctx).Error("transaction failed", zap.String("op", op), zap.Error(err))
	return internal("Failed to "+op, err)
}

// storageError logs a failed read outside a transaction and wraps it as internal
func storageError(ctx context.Context, op string, err error) error {
	logger.FromContext(ctx).Error("storage failure", zap.String("op", op), zap.Error(err))
	return internal("Failed to "+op, err)
}
