package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
	apperrors "github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
)

const providerColumns = `
	id, name, api_url, api_key, http_method, status, timeout_ms,
	rate_limit_per_sec, api_spec, created_at, updated_at`

// ProviderRepository implements provider.Repository
type ProviderRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *sql.DB, dialect Dialect) provider.Repository {
	return &ProviderRepository{db: db, dialect: dialect}
}

// GetByID retrieves a provider configuration by id
func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*provider.Provider, error) {
	defer observe("select", "providers")()

	query := r.dialect.Rebind("SELECT" + providerColumns + " FROM providers WHERE id = ?")
	p, err := scanProvider(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Provider")
		}
		return nil, apperrors.DatabaseError("Failed to get provider", err)
	}
	return p, nil
}

// List retrieves every provider
func (r *ProviderRepository) List(ctx context.Context) ([]*provider.Provider, error) {
	defer observe("select", "providers")()

	rows, err := r.db.QueryContext(ctx, "SELECT"+providerColumns+" FROM providers ORDER BY id")
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to list providers", err)
	}
	defer rows.Close()

	providers := []*provider.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.DatabaseError("Failed to scan provider", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("Failed to iterate providers", err)
	}
	return providers, nil
}

// Upsert creates or replaces a provider identified by name
func (r *ProviderRepository) Upsert(ctx context.Context, p *provider.Provider) error {
	defer observe("upsert", "providers")()

	spec, err := json.Marshal(p.Spec)
	if err != nil {
		return apperrors.Internal("Failed to encode provider api spec", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if p.Status == "" {
		p.Status = provider.StatusActive
	}

	query := r.dialect.Rebind(`
		INSERT INTO providers (
			name, api_url, api_key, http_method, status, timeout_ms,
			rate_limit_per_sec, api_spec, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			api_url = excluded.api_url,
			api_key = excluded.api_key,
			http_method = excluded.http_method,
			status = excluded.status,
			timeout_ms = excluded.timeout_ms,
			rate_limit_per_sec = excluded.rate_limit_per_sec,
			api_spec = excluded.api_spec,
			updated_at = excluded.updated_at
		RETURNING id, created_at`)

	var createdAt int64
	err = r.db.QueryRowContext(ctx, query,
		p.Name, p.APIURL, p.APIKey, p.HTTPMethod, string(p.Status), p.Timeout.Milliseconds(),
		p.RateLimitPerSec, string(spec), now.Unix(), now.Unix(),
	).Scan(&p.ID, &createdAt)
	if err != nil {
		return apperrors.DatabaseError("Failed to upsert provider", err)
	}

	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = now
	return nil
}

// UpsertService creates or replaces a service-to-provider link
func (r *ProviderRepository) UpsertService(ctx context.Context, s *provider.Service) error {
	defer observe("upsert", "services")()

	if s.ID == 0 {
		query := r.dialect.Rebind("INSERT INTO services (name, provider_id) VALUES (?, ?) RETURNING id")
		if err := r.db.QueryRowContext(ctx, query, s.Name, int64OrNil(s.ProviderID)).Scan(&s.ID); err != nil {
			return apperrors.DatabaseError("Failed to create service", err)
		}
		return nil
	}

	query := r.dialect.Rebind(`
		INSERT INTO services (id, name, provider_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			provider_id = excluded.provider_id`)
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.Name, int64OrNil(s.ProviderID)); err != nil {
		return apperrors.DatabaseError("Failed to upsert service", err)
	}
	return nil
}

func scanProvider(row rowScanner) (*provider.Provider, error) {
	var (
		p         provider.Provider
		status    string
		timeoutMS int64
		spec      []byte
		createdAt int64
		updatedAt int64
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.APIURL, &p.APIKey, &p.HTTPMethod, &status, &timeoutMS,
		&p.RateLimitPerSec, &spec, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(spec) > 0 {
		if err := json.Unmarshal(spec, &p.Spec); err != nil {
			return nil, err
		}
	}
	p.Status = provider.Status(status)
	p.Timeout = time.Duration(timeoutMS) * time.Millisecond
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &p, nil
}
