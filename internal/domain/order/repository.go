package order

import "context"

// Repository defines the order store operations used by the sync engine
type Repository interface {
	// GetByIDs returns the orders that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []int64) ([]*Order, error)

	// ListEligible returns orders with a provider order id whose status is not excluded
	ListEligible(ctx context.Context, filter EligibilityFilter) ([]*Order, error)

	// ApplySyncUpdate transactionally writes the non-nil fields of update and returns the stored order
	ApplySyncUpdate(ctx context.Context, id int64, update SyncUpdate) (*Order, error)
}
