package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/kendall-kelly/route-orders-api/logger"
	"github.com/kendall-kelly/route-orders-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefectInput is one defective product reported by a customer
type DefectInput struct {
	ProductID   uint     `json:"productId"`
	Quantity    Quantity `json:"quantity"`
	Description string   `json:"reportDescription"`
}

// ApprovalResult describes the effect of approving a defect report
type ApprovalResult struct {
	Defect            models.ProductDefect `json:"defect"`
	Order             *models.Order        `json:"order"`
	LineRemoved       bool                 `json:"line_removed"`
	RemainingQuantity int                  `json:"remaining_quantity"`
}

// DefectFilter narrows ListDefects; zero fields match everything
type DefectFilter struct {
	CustomerID uint
	OrderID    uint
}

// DefectService records defect reports and applies approved ones to orders
type DefectService struct {
	db     *gorm.DB
	images ImageService
}

// NewDefectService creates a defect service. images may be nil when photo
// storage is not configured.
func NewDefectService(db *gorm.DB, images ImageService) *DefectService {
	return &DefectService{db: db, images: images}
}

// Report records a batch of defect reports against one of the customer's
// undelivered orders. Either every entry is recorded or none is.
func (s *DefectService) Report(ctx context.Context, customerID, orderID uint, inputs []DefectInput) ([]models.ProductDefect, error) {
	if len(inputs) == 0 {
		return nil, invalidArgument("EMPTY_DEFECTS", "At least one defective product is required")
	}

	quantities := make([]int, len(inputs))
	for i, in := range inputs {
		qty, ok := in.Quantity.Int()
		if !ok || qty <= 0 {
			return nil, invalidArgument("INVALID_QUANTITY", "Invalid defect quantity for product %d", in.ProductID)
		}
		quantities[i] = qty
	}

	defects := make([]models.ProductDefect, 0, len(inputs))
	err := WithTransaction(ctx, s.db, "report defect", func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Where("id = ? AND customer_id = ? AND delivery_status <> ?", orderID, customerID, models.DeliveryDelivered).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOrderNotFound()
			}
			return err
		}

		for i, in := range inputs {
			var lines int64
			err := tx.Model(&models.OrderProduct{}).
				Joins("JOIN orders ON orders.id = order_products.order_id").
				Where("order_products.order_id = ? AND order_products.product_id = ? AND orders.customer_id = ?",
					orderID, in.ProductID, customerID).
				Count(&lines).Error
			if err != nil {
				return err
			}
			if lines == 0 {
				return notFound("PRODUCT_NOT_IN_ORDER", "Product %d not found in order", in.ProductID)
			}

			defect := models.ProductDefect{
				OrderID:           orderID,
				ProductID:         in.ProductID,
				CustomerID:        customerID,
				ReportDescription: in.Description,
				Quantity:          quantities[i],
				Status:            models.DefectPending,
			}
			if err := tx.Create(&defect).Error; err != nil {
				return err
			}
			defects = append(defects, defect)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defects, nil
}

// Approve applies a pending defect report to its order: the defective
// quantity is removed from the line item (deleting it when nothing is left)
// and the order total is recomputed. An order left without line items is
// cancelled.
func (s *DefectService) Approve(ctx context.Context, reportID, orderID uint) (*ApprovalResult, error) {
	result := &ApprovalResult{}
	err := WithTransaction(ctx, s.db, "approve defect", func(tx *gorm.DB) error {
		defect := &result.Defect
		if err := tx.Where("id = ? AND order_id = ?", reportID, orderID).First(defect).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("DEFECT_NOT_FOUND", "Defect report %d not found for order %d", reportID, orderID)
			}
			return err
		}
		if defect.Status == models.DefectApproved {
			return conflict("DEFECT_ALREADY_APPROVED", "Defect report %d is already approved", reportID)
		}

		var line models.OrderProduct
		if err := tx.Where("order_id = ? AND product_id = ?", orderID, defect.ProductID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("LINE_ITEM_NOT_FOUND", "product not found in order")
			}
			return err
		}

		switch {
		case defect.Quantity > line.Quantity:
			return conflict("DEFECT_EXCEEDS_QUANTITY",
				"Defective quantity %d exceeds ordered quantity %d", defect.Quantity, line.Quantity)
		case defect.Quantity == line.Quantity:
			if err := tx.Delete(&line).Error; err != nil {
				return err
			}
			result.LineRemoved = true
		default:
			result.RemainingQuantity = line.Quantity - defect.Quantity
			err := tx.Model(&line).Updates(map[string]interface{}{
				"quantity": result.RemainingQuantity,
				"status":   models.LineStatusApproved,
			}).Error
			if err != nil {
				return err
			}
		}

		if _, _, err := recomputeOrderTotal(tx, orderID); err != nil {
			return err
		}

		if err := tx.Model(defect).Update("status", models.DefectApproved).Error; err != nil {
			return fmt.Errorf("update defect status: %w", err)
		}
		defect.Status = models.DefectApproved

		var order models.Order
		if err := tx.Preload("Products", orderLinesByID).First(&order, orderID).Error; err != nil {
			return err
		}
		result.Order = &order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("defect approved",
		zap.Uint("defect_id", reportID),
		zap.Uint("order_id", orderID),
		zap.Bool("line_removed", result.LineRemoved))
	return result, nil
}

// ListDefects returns defect reports newest first with presigned photo URLs
func (s *DefectService) ListDefects(ctx context.Context, filter DefectFilter) ([]models.ProductDefect, error) {
	query := s.db.WithContext(ctx)
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}

	var defects []models.ProductDefect
	if err := query.Order("created_at DESC, id DESC").Find(&defects).Error; err != nil {
		return nil, storageError(ctx, "list defects", err)
	}

	for i := range defects {
		s.populateImageURL(ctx, &defects[i])
	}
	return defects, nil
}

// AttachImage uploads an evidence photo for one of the customer's pending
// defect reports, replacing any previous photo
func (s *DefectService) AttachImage(ctx context.Context, customerID, reportID uint, fileHeader *multipart.FileHeader) (*models.ProductDefect, error) {
	if s.images == nil {
		return nil, newError(KindInternal, "IMAGE_STORAGE_DISABLED", "Image storage is not configured")
	}

	var defect models.ProductDefect
	err := s.db.WithContext(ctx).Where("id = ? AND customer_id = ?", reportID, customerID).First(&defect).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("DEFECT_NOT_FOUND", "Defect report %d not found", reportID)
		}
		return nil, storageError(ctx, "load defect", err)
	}
	if defect.Status == models.DefectApproved {
		return nil, conflict("DEFECT_ALREADY_APPROVED", "Defect report %d is already approved", reportID)
	}

	key, err := s.images.UploadImage(ctx, fileHeader, fmt.Sprintf("defects/%d", defect.ID))
	if err != nil {
		return nil, err
	}

	previous := defect.ImageS3Key
	if err := s.db.WithContext(ctx).Model(&defect).Update("image_s3_key", key).Error; err != nil {
		if delErr := s.images.DeleteImage(ctx, key); delErr != nil {
			logger.FromContext(ctx).Warn("failed to clean up uploaded image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, storageError(ctx, "attach image", err)
	}
	defect.ImageS3Key = &key

	if previous != nil && *previous != key {
		if err := s.images.DeleteImage(ctx, *previous); err != nil {
			logger.FromContext(ctx).Warn("failed to delete replaced image", zap.String("key", *previous), zap.Error(err))
		}
	}

	s.populateImageURL(ctx, &defect)
	return &defect, nil
}

func (s *DefectService) populateImageURL(ctx context.Context, defect *models.ProductDefect) {
	if s.images == nil || defect.ImageS3Key == nil {
		return
	}
	url, err := s.images.GetImageURL(ctx, *defect.ImageS3Key)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to presign defect image", zap.Uint("defect_id", defect.ID), zap.Error(err))
		return
	}
	defect.ImageURL = &url
}
