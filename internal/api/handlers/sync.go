package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/pratik-mahalle/smmpanel/internal/api/dto"
	"github.com/pratik-mahalle/smmpanel/internal/api/middleware"
	"github.com/pratik-mahalle/smmpanel/internal/domain/ordersync"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/utils"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/validator"
	"github.com/pratik-mahalle/smmpanel/internal/worker"
)

// Scheduler is the part of the periodic trigger exposed over HTTP
type Scheduler interface {
	TriggerNow(ctx context.Context) (*ordersync.RunResult, error)
	Status() worker.Status
}

type SyncHandler struct {
	service   ordersync.Service
	scheduler Scheduler
	logger    *logger.Logger
	validator *validator.Validator
}

func NewSyncHandler(service ordersync.Service, scheduler Scheduler, log *logger.Logger, val *validator.Validator) *SyncHandler {
	return &SyncHandler{service: service, scheduler: scheduler, logger: log, validator: val}
}

// Sync runs a manual sync over explicit orders or every eligible order
// @Summary Sync orders with their providers
// @Tags Sync
// @Accept json
// @Produce json
// @Param request body dto.SyncRequest true "Orders to sync"
// @Success 200 {object} dto.SyncResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /admin/orders/sync [post]
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req dto.SyncRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.service.Run(r.Context(), req.Options())
	if err != nil {
		writeServiceError(w, err, "Failed to sync orders")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewSyncResponse(result))
}

// SyncOrder syncs one order. Non-admin callers may only sync their own orders.
// @Summary Sync a single order
// @Tags Sync
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.SyncResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /orders/{id}/sync [post]
func (h *SyncHandler) SyncOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, err, "Invalid order id")
		return
	}

	var result *ordersync.RunResult
	if middleware.IsAdmin(r) {
		result, err = h.service.SyncOrder(r.Context(), orderID)
	} else {
		userID, _ := middleware.GetUserID(r)
		result, err = h.service.SyncUserOrder(r.Context(), userID, orderID)
	}
	if err != nil {
		writeServiceError(w, err, "Failed to sync order")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewSyncResponse(result))
}

// Trigger runs the scheduled sync-all pass immediately
// @Summary Trigger the scheduled sync
// @Tags Sync
// @Produce json
// @Success 200 {object} dto.SyncResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /admin/sync/trigger [post]
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduler.TriggerNow(r.Context())
	if stderrors.Is(err, worker.ErrAlreadyRunning) {
		utils.WriteError(w, errors.SyncInProgress("A scheduled sync is already running"))
		return
	}
	if err != nil {
		writeServiceError(w, err, "Failed to run scheduled sync")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewSyncResponse(result))
}

// Status reports the scheduler state
// @Summary Scheduled sync status
// @Tags Sync
// @Produce json
// @Success 200 {object} worker.Status
// @Security BearerAuth
// @Router /admin/sync/status [get]
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, h.scheduler.Status())
}
