package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/kendall-kelly/route-orders-api/utils"
)

// ImageService stores defect evidence photos
type ImageService interface {
	// UploadImage validates and stores a photo under prefix, returning its storage key
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, prefix string) (string, error)

	// GetImageURL returns a URL for viewing a stored photo
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes a stored photo
	DeleteImage(ctx context.Context, imageKey string) error
}

// S3ImageService implements ImageService on top of S3Interface
type S3ImageService struct {
	s3Service S3Interface
}

var imageServiceInstance ImageService

// InitImageService initializes the image service with an S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = &S3ImageService{s3Service: s3Service}
	return imageServiceInstance
}

// GetImageService returns the image service, nil when photo storage is not configured
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// UploadImage validates the file and stores it as <prefix>/<uuid><ext>
func (s *S3ImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, prefix string) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	content, err := utils.ReadUploadedFile(fileHeader)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), utils.ImageExt(fileHeader.Filename))
	if err := s.s3Service.PutObject(ctx, key, utils.ImageContentType(fileHeader.Filename), content); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// GetImageURL generates a presigned URL for a stored photo
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// DeleteImage deletes a stored photo
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteObject(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
