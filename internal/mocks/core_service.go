package mocks

import (
	"context"

	"github.com/biogames/biogames-api/internal/platform/images"
	"github.com/biogames/biogames-api/internal/service"
)

// MockCoreService implements service.CoreService for testing
type MockCoreService struct {
	RandomCoreIDFn func(ctx context.Context) (int64, error)
	OpenImageFn    func(ctx context.Context, coreID int64) (*images.Image, error)

	DefaultError error
}

var _ service.CoreService = (*MockCoreService)(nil)

// RandomCoreID implements the CoreService.RandomCoreID method
func (m *MockCoreService) RandomCoreID(ctx context.Context) (int64, error) {
	if m.RandomCoreIDFn != nil {
		return m.RandomCoreIDFn(ctx)
	}
	return 0, m.DefaultError
}

// OpenImage implements the CoreService.OpenImage method
func (m *MockCoreService) OpenImage(ctx context.Context, coreID int64) (*images.Image, error) {
	if m.OpenImageFn != nil {
		return m.OpenImageFn(ctx, coreID)
	}
	return nil, m.DefaultError
}
