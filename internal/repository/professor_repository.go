package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// ProfessorRepository defines persistence access for faculty profiles.
type ProfessorRepository interface {
	Create(ctx context.Context, professor *domain.Professor) error
	Update(ctx context.Context, professor *domain.Professor) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Professor, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Professor, error)
}

type professorRepository struct {
	pool *pgxpool.Pool
}

// NewProfessorRepository returns a Postgres-backed implementation.
func NewProfessorRepository(pool *pgxpool.Pool) ProfessorRepository {
	return &professorRepository{pool: pool}
}

func (r *professorRepository) Create(ctx context.Context, professor *domain.Professor) error {
	const query = `
        INSERT INTO professors (name, title, email, bio, website)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		professor.Name,
		professor.Title,
		professor.Email,
		professor.Bio,
		professor.Website,
	).Scan(&professor.ID, &professor.CreatedAt, &professor.UpdatedAt)
}

func (r *professorRepository) Update(ctx context.Context, professor *domain.Professor) error {
	const query = `
        UPDATE professors
        SET name=$1, title=$2, email=$3, bio=$4, website=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		professor.Name,
		professor.Title,
		professor.Email,
		professor.Bio,
		professor.Website,
		professor.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *professorRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM professors WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *professorRepository) GetByID(ctx context.Context, id int64) (*domain.Professor, error) {
	const query = `
        SELECT id, name, title, email, bio, website, created_at, updated_at
        FROM professors WHERE id=$1`

	var professor domain.Professor
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&professor.ID,
		&professor.Name,
		&professor.Title,
		&professor.Email,
		&professor.Bio,
		&professor.Website,
		&professor.CreatedAt,
		&professor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &professor, nil
}

func (r *professorRepository) List(ctx context.Context, limit, offset int) ([]*domain.Professor, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	const query = `
        SELECT id, name, title, email, bio, website, created_at, updated_at
        FROM professors ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var professors []*domain.Professor
	for rows.Next() {
		var professor domain.Professor
		if err := rows.Scan(
			&professor.ID,
			&professor.Name,
			&professor.Title,
			&professor.Email,
			&professor.Bio,
			&professor.Website,
			&professor.CreatedAt,
			&professor.UpdatedAt,
		); err != nil {
			return nil, err
		}
		professors = append(professors, &professor)
	}
	return professors, rows.Err()
}
