package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/pratik-mahalle/smmpanel/internal/domain/order"
	apperrors "github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
)

const orderColumns = `
	o.id, o.user_id, o.service_id, o.link, o.quantity, o.status,
	s.provider_id, o.provider_order_id, o.provider_status, o.remains, o.start_count,
	o.last_sync_at, o.created_at, o.updated_at`

const orderFrom = `
	FROM orders o
	LEFT JOIN services s ON s.id = o.service_id`

// OrderRepository implements order.Repository
type OrderRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, dialect Dialect) order.Repository {
	return &OrderRepository{db: db, dialect: dialect}
}

// GetByIDs retrieves the orders that exist among ids
func (r *OrderRepository) GetByIDs(ctx context.Context, ids []int64) ([]*order.Order, error) {
	defer observe("select", "orders")()

	if len(ids) == 0 {
		return []*order.Order{}, nil
	}

	pred, args := r.dialect.inInt64("o.id", ids)
	query := r.dialect.Rebind("SELECT" + orderColumns + orderFrom + " WHERE " + pred + " ORDER BY o.id")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to get orders", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// ListEligible returns orders that have been submitted upstream and are not in an excluded status
func (r *OrderRepository) ListEligible(ctx context.Context, filter order.EligibilityFilter) ([]*order.Order, error) {
	defer observe("select", "orders")()

	statuses := make([]string, len(filter.ExcludeStatuses))
	for i, s := range filter.ExcludeStatuses {
		statuses[i] = string(s)
	}
	pred, args := r.dialect.notInStrings("o.status", statuses)

	where := []string{"o.provider_order_id IS NOT NULL", pred}
	if filter.ProviderID != nil {
		where = append(where, "s.provider_id = ?")
		args = append(args, *filter.ProviderID)
	}

	query := r.dialect.Rebind("SELECT" + orderColumns + orderFrom +
		" WHERE " + strings.Join(where, " AND ") + " ORDER BY o.id")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to list eligible orders", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// ApplySyncUpdate writes the non-nil fields of update in one transaction
func (r *OrderRepository) ApplySyncUpdate(ctx context.Context, id int64, update order.SyncUpdate) (*order.Order, error) {
	defer observe("update", "orders")()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	var locked int64
	lockQuery := r.dialect.Rebind("SELECT id FROM orders WHERE id = ?" + r.dialect.ForUpdate())
	if err := tx.QueryRowContext(ctx, lockQuery, id).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Order")
		}
		return nil, apperrors.DatabaseError("Failed to lock order", err)
	}

	var status any
	if update.Status != nil {
		status = string(*update.Status)
	}
	syncedAt := update.SyncedAt.Unix()

	updateQuery := r.dialect.Rebind(`
		UPDATE orders SET
			status = COALESCE(?, status),
			provider_status = COALESCE(?, provider_status),
			remains = COALESCE(?, remains),
			start_count = COALESCE(?, start_count),
			last_sync_at = ?,
			updated_at = ?
		WHERE id = ?`)
	_, err = tx.ExecContext(ctx, updateQuery,
		status,
		stringOrNil(update.ProviderStatus),
		int64OrNil(update.Remains),
		int64OrNil(update.StartCount),
		syncedAt,
		syncedAt,
		id,
	)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to update order", err)
	}

	row := tx.QueryRowContext(ctx, r.dialect.Rebind("SELECT"+orderColumns+orderFrom+" WHERE o.id = ?"), id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to reload order", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.DatabaseError("Failed to commit order update", err)
	}
	return o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o               order.Order
		status          string
		providerID      sql.NullInt64
		providerOrderID sql.NullString
		providerStatus  sql.NullString
		remains         sql.NullInt64
		startCount      sql.NullInt64
		lastSyncAt      sql.NullInt64
		createdAt       int64
		updatedAt       int64
	)

	err := row.Scan(
		&o.ID, &o.UserID, &o.ServiceID, &o.Link, &o.Quantity, &status,
		&providerID, &providerOrderID, &providerStatus, &remains, &startCount,
		&lastSyncAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = order.Status(status)
	o.ProviderID = nullInt64(providerID)
	o.ProviderOrderID = nullString(providerOrderID)
	o.ProviderStatus = nullString(providerStatus)
	o.Remains = nullInt64(remains)
	o.StartCount = nullInt64(startCount)
	o.LastSyncAt = timeFromUnix(lastSyncAt)
	o.CreatedAt = *timeFromUnix(sql.NullInt64{Int64: createdAt, Valid: true})
	o.UpdatedAt = *timeFromUnix(sql.NullInt64{Int64: updatedAt, Valid: true})

	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]*order.Order, error) {
	orders := []*order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperrors.DatabaseError("Failed to scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("Failed to iterate orders", err)
	}
	return orders, nil
}
