package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// PermissionRepository manages per-resource write grants.
type PermissionRepository interface {
	Upsert(ctx context.Context, perm *domain.Permission) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.Permission, error)
}

type permissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository returns a Postgres-backed implementation.
func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepository{pool: pool}
}

func (r *permissionRepository) Upsert(ctx context.Context, perm *domain.Permission) error {
	const query = `
        INSERT INTO user_permissions (user_id, resource, can_write)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, resource)
        DO UPDATE SET can_write=EXCLUDED.can_write, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, perm.UserID, perm.Resource, perm.CanWrite)
	return err
}

func (r *permissionRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Permission, error) {
	const query = `
        SELECT user_id, resource, can_write, updated_at
        FROM user_permissions WHERE user_id=$1 ORDER BY resource`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*domain.Permission
	for rows.Next() {
		var perm domain.Permission
		if err := rows.Scan(&perm.UserID, &perm.Resource, &perm.CanWrite, &perm.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, &perm)
	}
	return perms, rows.Err()
}
