package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/database"
)

const competitorColumns = `id, name, sources, average_rating, total_reviews, last_updated`

// CompetitorRepository implements repository.CompetitorRepository using PostgreSQL.
type CompetitorRepository struct {
	pool database.DBTX
}

// NewCompetitorRepository creates a new PostgreSQL-backed competitor repository.
func NewCompetitorRepository(pool database.DBTX) *CompetitorRepository {
	return &CompetitorRepository{pool: pool}
}

func competitorArgs(c *domain.Competitor) ([]any, error) {
	sourcesJSON, err := nullableJSON(c.Sources, false)
	if err != nil {
		return nil, fmt.Errorf("marshal competitor sources: %w", err)
	}
	return []any{c.ID, c.Name, sourcesJSON, c.AverageRating, c.TotalReviews, c.LastUpdated}, nil
}

func scanCompetitor(row scanner) (*domain.Competitor, error) {
	var (
		c           domain.Competitor
		sourcesJSON []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &sourcesJSON, &c.AverageRating, &c.TotalReviews, &c.LastUpdated); err != nil {
		return nil, err
	}
	if _, err := decodeJSON(sourcesJSON, &c.Sources); err != nil {
		return nil, fmt.Errorf("unmarshal competitor sources: %w", err)
	}
	c.ApplyDefaults()
	return &c, nil
}

// Add inserts c with a fresh ID.
func (r *CompetitorRepository) Add(ctx context.Context, c *domain.Competitor) error {
	c.ID = uuid.NewString()
	c.ApplyDefaults()
	args, err := competitorArgs(c)
	if err != nil {
		return err
	}
	query := `INSERT INTO competitors (` + competitorColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert competitor: %w", err)
	}
	return nil
}

// Get retrieves a competitor by its ID.
func (r *CompetitorRepository) Get(ctx context.Context, id string) (*domain.Competitor, bool, error) {
	c, err := scanCompetitor(r.pool.QueryRow(ctx, `SELECT `+competitorColumns+` FROM competitors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get competitor: %w", err)
	}
	return c, true, nil
}

// List returns every competitor in insertion order.
func (r *CompetitorRepository) List(ctx context.Context) ([]domain.Competitor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+competitorColumns+` FROM competitors ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	defer rows.Close()

	competitors := []domain.Competitor{}
	for rows.Next() {
		c, err := scanCompetitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan competitor row: %w", err)
		}
		competitors = append(competitors, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competitor rows: %w", err)
	}
	return competitors, nil
}

// Update merges patch into the stored competitor under a row lock.
func (r *CompetitorRepository) Update(ctx context.Context, id string, patch domain.CompetitorPatch) (*domain.Competitor, bool, error) {
	var c *domain.Competitor
	found, err := updateInTx(ctx, r.pool, "competitor",
		func(tx pgx.Tx) error {
			var err error
			c, err = scanCompetitor(tx.QueryRow(ctx, `SELECT `+competitorColumns+` FROM competitors WHERE id = $1 FOR UPDATE`, id))
			return err
		},
		func(tx pgx.Tx) error {
			patch.Apply(c)
			args, err := competitorArgs(c)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `UPDATE competitors
				SET name = $2, sources = $3, average_rating = $4, total_reviews = $5, last_updated = $6
				WHERE id = $1`, args...)
			return err
		},
	)
	if err != nil || !found {
		return nil, false, err
	}
	return c, true, nil
}

// Delete removes a competitor by its ID.
func (r *CompetitorRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.pool, "competitors", id)
}
