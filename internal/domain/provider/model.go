package provider

import "time"

// Status is the operational status of a provider
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Provider is a third-party SMM API configuration. The sync engine only reads it.
type Provider struct {
	ID         int64  `json:"id,string"`
	Name       string `json:"name"`
	APIURL     string `json:"apiUrl"`
	APIKey     string `json:"-"`
	HTTPMethod string `json:"httpMethod"`
	Status     Status `json:"status"`
	// Timeout bounds a single outbound status request; zero means the engine default
	Timeout time.Duration `json:"timeout"`
	// RateLimitPerSec caps outbound requests; zero means unlimited
	RateLimitPerSec float64   `json:"rateLimitPerSec"`
	Spec            APISpec   `json:"spec"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsActive reports whether orders of this provider may be synced
func (p *Provider) IsActive() bool {
	return p.Status == StatusActive
}

// Service links a purchasable service to the provider that fulfils it
type Service struct {
	ID         int64  `json:"id,string"`
	Name       string `json:"name"`
	ProviderID *int64 `json:"providerId,string,omitempty"`
}
