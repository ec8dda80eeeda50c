package order

import "strings"

// Status is the canonical order status vocabulary
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusFailed     Status = "failed"
)

// IsValid returns true if s is part of the canonical vocabulary
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusInProgress, StatusCompleted,
		StatusPartial, StatusCancelled, StatusRefunded, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true when no further sync is expected
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRefunded, StatusFailed:
		return true
	default:
		return false
	}
}

// TerminalStatuses lists the statuses excluded from eligibility-filtered runs
func TerminalStatuses() []Status {
	return []Status{StatusCompleted, StatusCancelled, StatusRefunded, StatusFailed}
}

// providerStatusSynonyms maps normalized provider vocabulary to canonical statuses.
var providerStatusSynonyms = map[string]Status{
	"pending":  StatusPending,
	"awaiting": StatusPending,
	"queued":   StatusPending,
	"waiting":  StatusPending,
	"new":      StatusPending,

	"processing": StatusProcessing,
	"process":    StatusProcessing,

	"in_progress": StatusInProgress,
	"in progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"in-progress": StatusInProgress,
	"active":      StatusInProgress,
	"running":     StatusInProgress,
	"started":     StatusInProgress,

	"completed": StatusCompleted,
	"complete":  StatusCompleted,
	"done":      StatusCompleted,
	"finished":  StatusCompleted,
	"success":   StatusCompleted,
	"delivered": StatusCompleted,

	"partial":             StatusPartial,
	"partially completed": StatusPartial,
	"partially_completed": StatusPartial,
	"partially":           StatusPartial,

	"cancelled": StatusCancelled,
	"canceled":  StatusCancelled,
	"cancel":    StatusCancelled,

	"refunded": StatusRefunded,
	"refund":   StatusRefunded,

	"failed":  StatusFailed,
	"fail":    StatusFailed,
	"failure": StatusFailed,
	"error":   StatusFailed,
}

// MapProviderStatus normalizes a provider-reported status string.
// Unrecognized input maps to StatusPending so an unknown string never marks an
// order final without explicit provider confirmation.
func MapProviderStatus(raw string) Status {
	if s, ok := providerStatusSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusPending
}
