package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// AuditRepository reads entries written by the audit triggers.
type AuditRepository interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed implementation.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const query = `
        SELECT id, table_name, row_id, action, old_data, changed_at
        FROM audit_logs ORDER BY changed_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TableName,
			&entry.RowID,
			&entry.Action,
			&entry.OldData,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
