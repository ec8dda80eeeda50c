package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/utils"
)

type SyncLogHandler struct {
	service synclog.Service
	logger  *logger.Logger
}

func NewSyncLogHandler(service synclog.Service, log *logger.Logger) *SyncLogHandler {
	return &SyncLogHandler{service: service, logger: log}
}

// List returns sync log entries, newest first
// @Summary List sync log entries
// @Tags Sync
// @Produce json
// @Param order_id query string false "Filter by order"
// @Param provider_id query string false "Filter by provider"
// @Param action query string false "manual_sync or cron_sync"
// @Param status query string false "success or failed"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.PaginatedResponse{data=[]synclog.Entry}
// @Security BearerAuth
// @Router /admin/sync/logs [get]
func (h *SyncLogHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter synclog.Filter
	var err error

	if filter.OrderID, err = utils.ParseInt64Query(r, "order_id"); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid order_id"))
		return
	}
	if filter.ProviderID, err = utils.ParseInt64Query(r, "provider_id"); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid provider_id"))
		return
	}
	if v := r.URL.Query().Get("action"); v != "" {
		action := synclog.Action(v)
		filter.Action = &action
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := synclog.Outcome(v)
		filter.Status = &status
	}

	p := utils.ParsePaginationParams(r)
	entries, total, err := h.service.List(r.Context(), filter, p.Page, p.PageSize)
	if err != nil {
		writeServiceError(w, err, "Failed to list sync logs")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(entries, p.Page, p.PageSize, total))
}
