package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/database"
)

const responseColumns = `id, review_id, content, author_id, template_id, status, created_at, updated_at`

// ResponseRepository implements repository.ResponseRepository using PostgreSQL.
type ResponseRepository struct {
	pool database.DBTX
}

// NewResponseRepository creates a new PostgreSQL-backed response repository.
func NewResponseRepository(pool database.DBTX) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

func scanResponse(row scanner) (*domain.ReviewResponse, error) {
	var r domain.ReviewResponse
	if err := row.Scan(&r.ID, &r.ReviewID, &r.Content, &r.AuthorID, &r.TemplateID, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (repo *ResponseRepository) query(ctx context.Context, query string, args ...any) ([]domain.ReviewResponse, error) {
	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	responses := []domain.ReviewResponse{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response row: %w", err)
		}
		responses = append(responses, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate response rows: %w", err)
	}
	return responses, nil
}

// Add inserts r with a fresh ID, a draft status when unset and creation
// timestamps when zero.
func (repo *ResponseRepository) Add(ctx context.Context, r *domain.ReviewResponse) error {
	r.ID = uuid.NewString()
	r.ApplyDefaults()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	query := `INSERT INTO review_responses (` + responseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := repo.pool.Exec(ctx, query,
		r.ID, r.ReviewID, r.Content, r.AuthorID, r.TemplateID, r.Status, r.CreatedAt, r.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// Get retrieves a response by its ID.
func (repo *ResponseRepository) Get(ctx context.Context, id string) (*domain.ReviewResponse, bool, error) {
	r, err := scanResponse(repo.pool.QueryRow(ctx, `SELECT `+responseColumns+` FROM review_responses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get response: %w", err)
	}
	return r, true, nil
}

// List returns every response in insertion order.
func (repo *ResponseRepository) List(ctx context.Context) ([]domain.ReviewResponse, error) {
	return repo.query(ctx, `SELECT `+responseColumns+` FROM review_responses ORDER BY seq`)
}

// ListByReview returns the responses written to reviewID.
func (repo *ResponseRepository) ListByReview(ctx context.Context, reviewID string) ([]domain.ReviewResponse, error) {
	return repo.query(ctx, `SELECT `+responseColumns+` FROM review_responses WHERE review_id = $1 ORDER BY seq`, reviewID)
}

// Update merges patch into the stored response, stamping updated_at unless
// the patch sets it.
func (repo *ResponseRepository) Update(ctx context.Context, id string, patch domain.ResponsePatch) (*domain.ReviewResponse, bool, error) {
	var r *domain.ReviewResponse
	found, err := updateInTx(ctx, repo.pool, "response",
		func(tx pgx.Tx) error {
			var err error
			r, err = scanResponse(tx.QueryRow(ctx, `SELECT `+responseColumns+` FROM review_responses WHERE id = $1 FOR UPDATE`, id))
			return err
		},
		func(tx pgx.Tx) error {
			patch.Apply(r)
			if patch.UpdatedAt == nil {
				r.UpdatedAt = time.Now().UTC()
			}
			_, err := tx.Exec(ctx, `UPDATE review_responses SET content = $2, status = $3, updated_at = $4 WHERE id = $1`,
				r.ID, r.Content, r.Status, r.UpdatedAt)
			return err
		},
	)
	if err != nil || !found {
		return nil, false, err
	}
	return r, true, nil
}

// Delete removes a response by its ID.
func (repo *ResponseRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, repo.pool, "review_responses", id)
}
