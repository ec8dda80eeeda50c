package order

import "time"

// Order is the subset of a purchased service order the sync engine reads and writes.
// 64-bit identifiers and counters are encoded as JSON strings so browser clients
// never lose precision.
type Order struct {
	ID        int64  `json:"id,string"`
	UserID    int64  `json:"userId,string"`
	ServiceID int64  `json:"serviceId,string"`
	Link      string `json:"link"`
	Quantity  int64  `json:"quantity,string"`
	Status    Status `json:"status"`

	// ProviderID comes from the order's service; nil when the service has no provider.
	ProviderID *int64 `json:"providerId,string,omitempty"`
	// ProviderOrderID is nil until the order has been submitted upstream.
	ProviderOrderID *string `json:"providerOrderId,omitempty"`
	ProviderStatus  *string `json:"providerStatus,omitempty"`
	Remains         *int64  `json:"remains,string,omitempty"`
	StartCount      *int64  `json:"startCount,string,omitempty"`

	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// SyncUpdate carries the fields a successful sync may change. Nil fields are
// left untouched by the store.
type SyncUpdate struct {
	Status         *Status
	ProviderStatus *string
	Remains        *int64
	StartCount     *int64
	SyncedAt       time.Time
}

// EligibilityFilter selects orders for a "sync all" pass
type EligibilityFilter struct {
	ProviderID      *int64
	ExcludeStatuses []Status
}

// DefaultEligibility excludes every terminal status.
func DefaultEligibility(providerID *int64) EligibilityFilter {
	return EligibilityFilter{
		ProviderID:      providerID,
		ExcludeStatuses: TerminalStatuses(),
	}
}
