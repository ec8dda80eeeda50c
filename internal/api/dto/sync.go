package dto

import (
	"github.com/pratik-mahalle/smmpanel/internal/domain/ordersync"
	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
)

// SyncRequest selects the orders of a manual sync run
type SyncRequest struct {
	OrderIDs   []ID `json:"orderIds" validate:"required_without=SyncAll,max=500,dive,gt=0"`
	SyncAll    bool `json:"syncAll"`
	ProviderID *ID  `json:"providerId,omitempty" validate:"omitempty,gt=0"`
}

// Options converts the request into run options for a broadcasting manual run
func (r SyncRequest) Options() ordersync.Options {
	opts := ordersync.Options{
		OrderIDs:  Int64s(r.OrderIDs),
		SyncAll:   r.SyncAll,
		Broadcast: true,
		Action:    synclog.ActionManualSync,
	}
	if r.ProviderID != nil {
		id := int64(*r.ProviderID)
		opts.ProviderID = &id
	}
	return opts
}

// SyncResponse summarizes a run for API clients
type SyncResponse struct {
	Action         synclog.Action          `json:"action"`
	Synced         int                     `json:"syncedCount"`
	Failed         int                     `json:"failedCount"`
	Skipped        int                     `json:"skippedCount"`
	TotalChecked   int                     `json:"totalChecked"`
	TotalProcessed int                     `json:"totalProcessed"`
	Errors         []string                `json:"errors"`
	Results        []ordersync.OrderResult `json:"results"`
	DurationMS     int64                   `json:"durationMs"`
}

// NewSyncResponse converts a run result
func NewSyncResponse(r *ordersync.RunResult) SyncResponse {
	return SyncResponse{
		Action:         r.Action,
		Synced:         r.Synced,
		Failed:         r.Failed,
		Skipped:        r.Skipped,
		TotalChecked:   r.TotalChecked,
		TotalProcessed: r.TotalProcessed(),
		Errors:         r.Errors,
		Results:        r.Results,
		DurationMS:     r.Duration().Milliseconds(),
	}
}
