package ordersync

import (
	"time"

	"github.com/pratik-mahalle/smmpanel/internal/domain/order"
	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
)

// DefaultErrorLimit caps the error samples kept per run
const DefaultErrorLimit = 10

// Reasons reported for skipped orders
const (
	ReasonOrderNotFound     = "order not found"
	ReasonNoProviderOrderID = "order has no provider order id"
	ReasonNoProvider        = "service has no linked provider"
	ReasonProviderNotFound  = "provider not found"
	ReasonProviderInactive  = "provider inactive"
	ReasonSyncInProgress    = "sync already in progress"
	ReasonRunCancelled      = "run cancelled"
)

// Options selects what one orchestrator run covers
type Options struct {
	// OrderIDs syncs exactly these orders; ignored when SyncAll is set
	OrderIDs []int64
	// SyncAll syncs every eligible order
	SyncAll bool
	// ProviderID restricts the run to one provider
	ProviderID *int64
	// Broadcast publishes progress and order updates on the realtime bus
	Broadcast bool
	// Action is recorded on every log entry
	Action synclog.Action
}

// Outcome is the per-order result of a run
type Outcome string

const (
	OutcomeSynced  Outcome = "synced"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// OrderResult describes what happened to one candidate
type OrderResult struct {
	OrderID        int64        `json:"orderId,string"`
	ProviderID     *int64       `json:"providerId,string,omitempty"`
	Outcome        Outcome      `json:"outcome"`
	PreviousStatus order.Status `json:"previousStatus,omitempty"`
	Status         order.Status `json:"status,omitempty"`
	ProviderStatus *string      `json:"providerStatus,omitempty"`
	Remains        *int64       `json:"remains,string,omitempty"`
	StartCount     *int64       `json:"startCount,string,omitempty"`
	Reason         string       `json:"reason,omitempty"`
}

// RunResult aggregates one orchestrator invocation. It is never persisted.
type RunResult struct {
	Action       synclog.Action `json:"action"`
	Synced       int            `json:"syncedCount"`
	Failed       int            `json:"failedCount"`
	Skipped      int            `json:"skippedCount"`
	TotalChecked int            `json:"totalChecked"`
	Results      []OrderResult  `json:"results"`
	Errors       []string       `json:"errors"`
	StartedAt    time.Time      `json:"startedAt"`
	FinishedAt   time.Time      `json:"finishedAt"`
}

// TotalProcessed counts the orders that were actually attempted
func (r *RunResult) TotalProcessed() int {
	return r.Synced + r.Failed
}

// Duration returns how long the run took
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Progress is the payload of a sync_progress event
type Progress struct {
	Action    synclog.Action `json:"action"`
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	Synced    int            `json:"synced"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
	OrderID   int64          `json:"orderId,string,omitempty"`
	Done      bool           `json:"done"`
}
