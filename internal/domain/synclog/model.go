package synclog

import "time"

// Action tags what triggered a sync attempt
type Action string

const (
	ActionManualSync Action = "manual_sync"
	ActionCronSync   Action = "cron_sync"
)

// IsValid returns true if the action is known
func (a Action) IsValid() bool {
	return a == ActionManualSync || a == ActionCronSync
}

// Outcome is the recorded result of one attempt
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// IsValid returns true if the outcome is known
func (o Outcome) IsValid() bool {
	return o == OutcomeSuccess || o == OutcomeFailed
}

// Entry is one append-only record of a sync attempt
type Entry struct {
	ID         int64     `json:"id,string"`
	OrderID    int64     `json:"orderId,string"`
	ProviderID *int64    `json:"providerId,string,omitempty"`
	Action     Action    `json:"action"`
	Status     Outcome   `json:"status"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Filter narrows a log listing; nil fields match everything
type Filter struct {
	OrderID    *int64
	ProviderID *int64
	Action     *Action
	Status     *Outcome
}
