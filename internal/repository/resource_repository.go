package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// ResourceRepository defines persistence access for study resources.
type ResourceRepository interface {
	Create(ctx context.Context, resource *domain.Resource) error
	Update(ctx context.Context, resource *domain.Resource) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Resource, error)
}

type resourceRepository struct {
	pool *pgxpool.Pool
}

// NewResourceRepository returns a Postgres-backed implementation.
func NewResourceRepository(pool *pgxpool.Pool) ResourceRepository {
	return &resourceRepository{pool: pool}
}

func (r *resourceRepository) Create(ctx context.Context, resource *domain.Resource) error {
	const query = `
        INSERT INTO resources (title, description, kind, url)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		resource.Title,
		resource.Description,
		string(resource.Kind),
		resource.URL,
	).Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt)
}

func (r *resourceRepository) Update(ctx context.Context, resource *domain.Resource) error {
	const query = `
        UPDATE resources
        SET title=$1, description=$2, kind=$3, url=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		resource.Title,
		resource.Description,
		string(resource.Kind),
		resource.URL,
		resource.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	const query = `
        SELECT id, title, description, kind, url, created_at, updated_at
        FROM resources WHERE id=$1`

	var resource domain.Resource
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&resource.ID,
		&resource.Title,
		&resource.Description,
		&resource.Kind,
		&resource.URL,
		&resource.CreatedAt,
		&resource.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) List(ctx context.Context, limit, offset int) ([]*domain.Resource, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	const query = `
        SELECT id, title, description, kind, url, created_at, updated_at
        FROM resources ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []*domain.Resource
	for rows.Next() {
		var resource domain.Resource
		if err := rows.Scan(
			&resource.ID,
			&resource.Title,
			&resource.Description,
			&resource.Kind,
			&resource.URL,
			&resource.CreatedAt,
			&resource.UpdatedAt,
		); err != nil {
			return nil, err
		}
		resources = append(resources, &resource)
	}
	return resources, rows.Err()
}
