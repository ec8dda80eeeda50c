package ordersync

import "context"

// Service runs synchronization passes against provider APIs
type Service interface {
	// Run performs one pass. Only a failure to resolve the candidate set is returned as an error;
	// per-order failures are reported inside the result.
	Run(ctx context.Context, opts Options) (*RunResult, error)

	// SyncOrder syncs a single order without broadcasting
	SyncOrder(ctx context.Context, orderID int64) (*RunResult, error)

	// SyncUserOrder is SyncOrder restricted to an order owned by userID
	SyncUserOrder(ctx context.Context, userID, orderID int64) (*RunResult, error)
}
