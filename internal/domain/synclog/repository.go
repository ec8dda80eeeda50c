package synclog

import "context"

// Repository is the append-only sync log store
type Repository interface {
	// Create appends an entry and sets its ID
	Create(ctx context.Context, entry *Entry) error

	// List returns entries newest first together with the total match count
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, int64, error)
}

// Service exposes the log to the admin listing
type Service interface {
	List(ctx context.Context, filter Filter, page, pageSize int) ([]*Entry, int64, error)
}
