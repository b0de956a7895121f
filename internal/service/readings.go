package service

import (
	"context"
	"fmt"

	"silo_scanner/internal/catalog"
	"silo_scanner/internal/models"
	"silo_scanner/internal/repository"
)

// ReadingCache is the gateway's in-memory copy of the last reading per silo.
type ReadingCache interface {
	Cached(id models.SiloID) (models.SensorReading, bool)
}

// ReadingService serves the latest stored reading per silo.
type ReadingService struct {
	repo    repository.ReadingRepo
	catalog *catalog.Catalog
	cache   ReadingCache // optional
}

func NewReadingService(repo repository.ReadingRepo, cat *catalog.Catalog, cache ReadingCache) *ReadingService {
	return &ReadingService{repo: repo, catalog: cat, cache: cache}
}

// Latest returns (nil, nil) for a catalog silo that was never read.
// When the store has no row or fails, the gateway cache answers if it can.
func (s *ReadingService) Latest(ctx context.Context, id models.SiloID) (*models.SensorReading, error) {
	if !s.catalog.Contains(id) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSilo, id)
	}
	r, err := s.repo.Get(ctx, id)
	if r != nil && err == nil {
		return r, nil
	}
	if s.cache != nil {
		if cached, ok := s.cache.Cached(id); ok {
			return &cached, nil
		}
	}
	return r, err
}

func (s *ReadingService) List(ctx context.Context) ([]models.SensorReading, error) {
	return s.repo.List(ctx)
}
