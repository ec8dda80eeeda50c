package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/smmpanel/internal/api/dto"
	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/utils"
)

type ProviderHandler struct {
	repo   provider.Repository
	logger *logger.Logger
}

func NewProviderHandler(repo provider.Repository, log *logger.Logger) *ProviderHandler {
	return &ProviderHandler{repo: repo, logger: log}
}

// List returns every configured provider without its API key
// @Summary List providers
// @Tags Providers
// @Produce json
// @Success 200 {array} dto.ProviderDTO
// @Security BearerAuth
// @Router /admin/providers [get]
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.repo.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list providers")
		return
	}

	dtos := make([]dto.ProviderDTO, len(providers))
	for i, p := range providers {
		dtos[i] = dto.NewProviderDTO(p)
	}
	utils.WriteSuccess(w, http.StatusOK, dtos)
}
