package services

import (
	"context"
	"fmt"
	"sync"
)

// MockS3Service is an in-memory S3Interface for tests
type MockS3Service struct {
	objects map[string][]byte
	mu      sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{objects: make(map[string][]byte)}
}

func (m *MockS3Service) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	m.mu.Lock()
	m.objects[key] = body
	m.mu.Unlock()
	return nil
}

func (m *MockS3Service) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("file not found in mock S3: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

func (m *MockS3Service) DeleteObject(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// FileExists checks if an object exists in mock storage
func (m *MockS3Service) FileExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[key]
	return exists
}

// Keys returns every stored key
func (m *MockS3Service) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
