package provider

import "context"

// Repository defines provider configuration access. The sync engine only calls GetByID;
// the upserts serve the seed importer.
type Repository interface {
	// GetByID retrieves a provider by id
	GetByID(ctx context.Context, id int64) (*Provider, error)

	// List retrieves every provider
	List(ctx context.Context) ([]*Provider, error)

	// Upsert creates or replaces a provider configuration
	Upsert(ctx context.Context, p *Provider) error

	// UpsertService creates or replaces a service-to-provider link
	UpsertService(ctx context.Context, s *Service) error
}
