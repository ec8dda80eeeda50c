package client

import "time"

// SyncRequest selects the orders of a manual sync run. Set either OrderIDs or SyncAll.
type SyncRequest struct {
	OrderIDs   []int64 `json:"orderIds,omitempty"`
	SyncAll    bool    `json:"syncAll,omitempty"`
	ProviderID *int64  `json:"providerId,omitempty"`
}

// OrderResult is the outcome for one order of a run
type OrderResult struct {
	OrderID        int64   `json:"orderId,string"`
	ProviderID     *int64  `json:"providerId,string,omitempty"`
	Outcome        string  `json:"outcome"` // synced, failed, skipped
	PreviousStatus string  `json:"previousStatus,omitempty"`
	Status         string  `json:"status,omitempty"`
	ProviderStatus *string `json:"providerStatus,omitempty"`
	Remains        *int64  `json:"remains,string,omitempty"`
	StartCount     *int64  `json:"startCount,string,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

// SyncResponse summarizes a sync run
type SyncResponse struct {
	Action         string        `json:"action"`
	Synced         int           `json:"syncedCount"`
	Failed         int           `json:"failedCount"`
	Skipped        int           `json:"skippedCount"`
	TotalChecked   int           `json:"totalChecked"`
	TotalProcessed int           `json:"totalProcessed"`
	Errors         []string      `json:"errors"`
	Results        []OrderResult `json:"results"`
	DurationMS     int64         `json:"durationMs"`
}

// SchedulerStatus describes the periodic sync trigger
type SchedulerStatus struct {
	Started      bool       `json:"started"`
	InFlight     bool       `json:"inFlight"`
	Schedule     string     `json:"schedule"`
	NextRun      *time.Time `json:"nextRun,omitempty"`
	LastRunAt    *time.Time `json:"lastRunAt,omitempty"`
	LastDuration string     `json:"lastDuration,omitempty"`
	LastSynced   int        `json:"lastSynced"`
	LastFailed   int        `json:"lastFailed"`
	LastSkipped  int        `json:"lastSkipped"`
	LastError    string     `json:"lastError,omitempty"`
	SkippedTicks int64      `json:"skippedTicks"`
}

// SyncLogEntry is one recorded sync attempt
type SyncLogEntry struct {
	ID         int64     `json:"id,string"`
	OrderID    int64     `json:"orderId,string"`
	ProviderID *int64    `json:"providerId,string,omitempty"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SyncLogFilter narrows a log listing
type SyncLogFilter struct {
	OrderID    *int64
	ProviderID *int64
	Action     string
	Status     string
	Page       int
	PageSize   int
}

// SyncLogPage is one page of sync log entries
type SyncLogPage struct {
	Data       []SyncLogEntry `json:"data"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// Provider is a provider configuration as exposed by the API. The API key is never returned.
type Provider struct {
	ID              int64                  `json:"id,string"`
	Name            string                 `json:"name"`
	APIURL          string                 `json:"apiUrl"`
	HTTPMethod      string                 `json:"httpMethod"`
	Status          string                 `json:"status"`
	TimeoutMS       int64                  `json:"timeoutMs"`
	RateLimitPerSec float64                `json:"rateLimitPerSec"`
	HasAPIKey       bool                   `json:"hasApiKey"`
	Spec            map[string]interface{} `json:"spec"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// HealthResponse represents a health or readiness probe
type HealthResponse map[string]string
