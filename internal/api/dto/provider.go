package dto

import (
	"time"

	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
)

// ProviderDTO represents a provider configuration in API responses. The API key is never exposed.
type ProviderDTO struct {
	ID              int64            `json:"id,string"`
	Name            string           `json:"name"`
	APIURL          string           `json:"apiUrl"`
	HTTPMethod      string           `json:"httpMethod"`
	Status          provider.Status  `json:"status"`
	TimeoutMS       int64            `json:"timeoutMs"`
	RateLimitPerSec float64          `json:"rateLimitPerSec"`
	HasAPIKey       bool             `json:"hasApiKey"`
	Spec            provider.APISpec `json:"spec"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// NewProviderDTO converts a provider
func NewProviderDTO(p *provider.Provider) ProviderDTO {
	return ProviderDTO{
		ID:              p.ID,
		Name:            p.Name,
		APIURL:          p.APIURL,
		HTTPMethod:      p.HTTPMethod,
		Status:          p.Status,
		TimeoutMS:       p.Timeout.Milliseconds(),
		RateLimitPerSec: p.RateLimitPerSec,
		HasAPIKey:       p.APIKey != "",
		Spec:            p.Spec,
		UpdatedAt:       p.UpdatedAt,
	}
}
