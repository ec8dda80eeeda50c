package services

import (
	"context"
	"fmt"

	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	apperrors "github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/utils"
)

// SyncLogService implements synclog.Service
type SyncLogService struct {
	repo   synclog.Repository
	logger *logger.Logger
}

// NewSyncLogService creates a new sync log service
func NewSyncLogService(repo synclog.Repository, log *logger.Logger) synclog.Service {
	return &SyncLogService{
		repo:   repo,
		logger: log,
	}
}

// List returns one page of log entries, newest first
func (s *SyncLogService) List(ctx context.Context, filter synclog.Filter, page, pageSize int) ([]*synclog.Entry, int64, error) {
	if filter.Action != nil && !filter.Action.IsValid() {
		return nil, 0, apperrors.BadRequest(fmt.Sprintf("invalid action: %s", *filter.Action))
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, apperrors.BadRequest(fmt.Sprintf("invalid status: %s", *filter.Status))
	}

	p := utils.NewPaginationParams(page, pageSize)
	entries, total, err := s.repo.List(ctx, filter, p.PageSize, p.Offset)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to list sync logs")
		return nil, 0, err
	}
	return entries, total, nil
}
