// Package alertlog provides the read side of the alert log: the paginated
// per-shop history view and single-record lookup. Writes belong to the
// dispatch orchestrator.
package alertlog

import (
	"context"
	"fmt"

	"shopalert/internal/common/pagination"
	"shopalert/internal/domain/entity"
	"shopalert/internal/repository"
)

// Service provides alert history queries.
type Service struct {
	Repo repository.AlertRepository
}

// PaginatedResult represents the result of a paginated query.
// It contains both the data and pagination metadata.
type PaginatedResult struct {
	Data       []*entity.AlertRecord
	Pagination pagination.Metadata
}

// ListByShop retrieves the shop's alert records newest-first with pagination
// metadata.
func (s *Service) ListByShop(ctx context.Context, shopID string, params pagination.Params) (*PaginatedResult, error) {
	offset := pagination.CalculateOffset(params.Page, params.Limit)

	total, err := s.Repo.CountByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}

	records, err := s.Repo.ListByShop(ctx, shopID, offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	return &PaginatedResult{
		Data: records,
		Pagination: pagination.Metadata{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: pagination.CalculateTotalPages(total, params.Limit),
		},
	}, nil
}

// Get retrieves a single alert record by id.
// Returns entity.ErrNotFound if the record does not exist.
func (s *Service) Get(ctx context.Context, id string) (*entity.AlertRecord, error) {
	record, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("alert %q: %w", id, entity.ErrNotFound)
	}
	return record, nil
}
