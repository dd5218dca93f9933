package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxImageSize is 10MB in bytes
const MaxImageSize = 10 * 1024 * 1024

// allowedImageTypes maps accepted defect photo extensions to their content type
var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile checks the size and extension of an uploaded defect photo
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxImageSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024)),
		}
	}

	if _, ok := allowedImageTypes[ImageExt(fileHeader.Filename)]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only .png, .jpg and .jpeg files are allowed",
		}
	}

	return nil
}

// ImageExt returns the lower-cased extension of filename
func ImageExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ImageContentType returns the content type for an image file name,
// defaulting to application/octet-stream
func ImageContentType(filename string) string {
	if ct, ok := allowedImageTypes[ImageExt(filename)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ReadUploadedFile reads the whole uploaded file into memory
func ReadUploadedFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}
