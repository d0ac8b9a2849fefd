package service

import (
	"context"
	"log/slog"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

// DashboardService serves the reporting dashboard through a read-through cache.
type DashboardService struct {
	reporting ReportingGateway
	cache     DashboardCache
	logger    *slog.Logger
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(reporting ReportingGateway, cache DashboardCache, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		reporting: reporting,
		cache:     cache,
		logger:    logger,
	}
}

// Get returns the cached dashboard or fetches a fresh one. Cache failures are
// logged and fall through to the reporting service.
func (s *DashboardService) Get(ctx context.Context) (*domain.Dashboard, error) {
	if s.cache != nil {
		d, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "dashboard cache read failed", slog.String("error", err.Error()))
		} else if d != nil {
			return d, nil
		}
	}

	d, err := s.reporting.Dashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, d); err != nil {
			s.logger.WarnContext(ctx, "dashboard cache write failed", slog.String("error", err.Error()))
		}
	}
	return d, nil
}
