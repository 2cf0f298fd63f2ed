package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/images"
	"github.com/biogames/biogames-api/internal/store"
)

// CoreService serves cores outside of a game, for the intro screen.
type CoreService interface {
	// RandomCoreID picks any core.
	RandomCoreID(ctx context.Context) (int64, error)

	// OpenImage opens a core's image. The caller must close the body.
	OpenImage(ctx context.Context, coreID int64) (*images.Image, error)
}

type coreServiceImpl struct {
	cores  store.CoreStore
	images ImageSource
	logger *slog.Logger
}

// NewCoreService creates a new CoreService.
func NewCoreService(cores store.CoreStore, images ImageSource, logger *slog.Logger) (CoreService, error) {
	if cores == nil {
		return nil, domain.NewValidationError("cores", "cannot be nil", domain.ErrValidation)
	}
	if images == nil {
		return nil, domain.NewValidationError("images", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &coreServiceImpl{
		cores:  cores,
		images: images,
		logger: logger.With(slog.String("component", "core_service")),
	}, nil
}

func (s *coreServiceImpl) RandomCoreID(ctx context.Context) (int64, error) {
	id, err := s.cores.RandomID(ctx)
	if err != nil {
		return 0, NewServiceError("random_core", "failed to pick core", err)
	}
	return id, nil
}

func (s *coreServiceImpl) OpenImage(ctx context.Context, coreID int64) (*images.Image, error) {
	core, err := s.cores.GetByID(ctx, coreID)
	if err != nil {
		return nil, NewServiceError("open_image", "failed to load core", err)
	}
	img, err := s.images.Open(ctx, core)
	if err != nil {
		if errors.Is(err, images.ErrImageNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, NewServiceError("open_image", "failed to open image", err)
	}
	return img, nil
}
