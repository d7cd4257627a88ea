package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// ArticleRepository defines persistence access for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Article, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository returns a Postgres-backed implementation.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

func (r *articleRepository) Create(ctx context.Context, article *domain.Article) error {
	const query = `
        INSERT INTO articles (title, summary, content, author, cover_url, published_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Summary,
		article.Content,
		article.Author,
		article.CoverURL,
		article.PublishedAt,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func (r *articleRepository) Update(ctx context.Context, article *domain.Article) error {
	const query = `
        UPDATE articles
        SET title=$1, summary=$2, content=$3, author=$4, cover_url=$5, published_at=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		article.Title,
		article.Summary,
		article.Content,
		article.Author,
		article.CoverURL,
		article.PublishedAt,
		article.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	const query = `
        SELECT id, title, summary, content, author, cover_url, published_at, created_at, updated_at
        FROM articles WHERE id=$1`

	var article domain.Article
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&article.ID,
		&article.Title,
		&article.Summary,
		&article.Content,
		&article.Author,
		&article.CoverURL,
		&article.PublishedAt,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Article, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	const query = `
        SELECT id, title, summary, content, author, cover_url, published_at, created_at, updated_at
        FROM articles ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Summary,
			&article.Content,
			&article.Author,
			&article.CoverURL,
			&article.PublishedAt,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, err
		}
		articles = append(articles, &article)
	}
	return articles, rows.Err()
}
