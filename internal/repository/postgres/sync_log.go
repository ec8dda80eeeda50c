package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pratik-mahalle/smmpanel/internal/domain/synclog"
	apperrors "github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
)

// SyncLogRepository implements synclog.Repository
type SyncLogRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSyncLogRepository creates a new sync log repository
func NewSyncLogRepository(db *sql.DB, dialect Dialect) synclog.Repository {
	return &SyncLogRepository{db: db, dialect: dialect}
}

// Create appends a log entry
func (r *SyncLogRepository) Create(ctx context.Context, entry *synclog.Entry) error {
	defer observe("insert", "sync_logs")()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.CreatedAt = entry.CreatedAt.Truncate(time.Second)

	query := r.dialect.Rebind(`
		INSERT INTO sync_logs (order_id, provider_id, action, status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		entry.OrderID,
		int64OrNil(entry.ProviderID),
		string(entry.Action),
		string(entry.Status),
		entry.Message,
		entry.CreatedAt.Unix(),
	).Scan(&entry.ID)
	if err != nil {
		return apperrors.DatabaseError("Failed to create sync log", err)
	}
	return nil
}

// List returns log entries newest first with the total count of matches
func (r *SyncLogRepository) List(ctx context.Context, filter synclog.Filter, limit, offset int) ([]*synclog.Entry, int64, error) {
	defer observe("select", "sync_logs")()

	var (
		where []string
		args  []any
	)
	if filter.OrderID != nil {
		where = append(where, "order_id = ?")
		args = append(args, *filter.OrderID)
	}
	if filter.ProviderID != nil {
		where = append(where, "provider_id = ?")
		args = append(args, *filter.ProviderID)
	}
	if filter.Action != nil {
		where = append(where, "action = ?")
		args = append(args, string(*filter.Action))
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := r.dialect.Rebind("SELECT COUNT(*) FROM sync_logs" + clause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.DatabaseError("Failed to count sync logs", err)
	}

	listQuery := r.dialect.Rebind(`
		SELECT id, order_id, provider_id, action, status, message, created_at
		FROM sync_logs` + clause + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`)

	rows, err := r.db.QueryContext(ctx, listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, apperrors.DatabaseError("Failed to list sync logs", err)
	}
	defer rows.Close()

	entries := []*synclog.Entry{}
	for rows.Next() {
		var (
			e          synclog.Entry
			providerID sql.NullInt64
			action     string
			status     string
			message    sql.NullString
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &providerID, &action, &status, &message, &createdAt); err != nil {
			return nil, 0, apperrors.DatabaseError("Failed to scan sync log", err)
		}
		e.ProviderID = nullInt64(providerID)
		e.Action = synclog.Action(action)
		e.Status = synclog.Outcome(status)
		e.Message = message.String
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.DatabaseError("Failed to iterate sync logs", err)
	}

	return entries, total, nil
}
