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

const templateColumns = `id, name, content, sentiment, category, usage_count, success_rate`

// TemplateRepository implements repository.TemplateRepository using PostgreSQL.
type TemplateRepository struct {
	pool database.DBTX
}

// NewTemplateRepository creates a new PostgreSQL-backed template repository.
func NewTemplateRepository(pool database.DBTX) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

func scanTemplate(row scanner) (*domain.ResponseTemplate, error) {
	var t domain.ResponseTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Content, &t.Sentiment, &t.Category, &t.UsageCount, &t.SuccessRate); err != nil {
		return nil, err
	}
	return &t, nil
}

// Add inserts t with a fresh ID.
func (r *TemplateRepository) Add(ctx context.Context, t *domain.ResponseTemplate) error {
	t.ID = uuid.NewString()
	query := `INSERT INTO response_templates (` + templateColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.pool.Exec(ctx, query,
		t.ID, t.Name, t.Content, t.Sentiment, t.Category, t.UsageCount, t.SuccessRate,
	); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// Get retrieves a template by its ID.
func (r *TemplateRepository) Get(ctx context.Context, id string) (*domain.ResponseTemplate, bool, error) {
	t, err := scanTemplate(r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM response_templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get template: %w", err)
	}
	return t, true, nil
}

// List returns every template in insertion order.
func (r *TemplateRepository) List(ctx context.Context) ([]domain.ResponseTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM response_templates ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []domain.ResponseTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template rows: %w", err)
	}
	return templates, nil
}

// Update merges patch into the stored template under a row lock.
func (r *TemplateRepository) Update(ctx context.Context, id string, patch domain.TemplatePatch) (*domain.ResponseTemplate, bool, error) {
	var t *domain.ResponseTemplate
	found, err := updateInTx(ctx, r.pool, "template",
		func(tx pgx.Tx) error {
			var err error
			t, err = scanTemplate(tx.QueryRow(ctx, `SELECT `+templateColumns+` FROM response_templates WHERE id = $1 FOR UPDATE`, id))
			return err
		},
		func(tx pgx.Tx) error {
			patch.Apply(t)
			_, err := tx.Exec(ctx, `UPDATE response_templates
				SET name = $2, content = $3, sentiment = $4, category = $5, usage_count = $6, success_rate = $7
				WHERE id = $1`,
				t.ID, t.Name, t.Content, t.Sentiment, t.Category, t.UsageCount, t.SuccessRate)
			return err
		},
	)
	if err != nil || !found {
		return nil, false, err
	}
	return t, true, nil
}

// Delete removes a template by its ID.
func (r *TemplateRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.pool, "response_templates", id)
}

// IncrementUsage bumps usage_count atomically.
func (r *TemplateRepository) IncrementUsage(ctx context.Context, id string) (bool, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE response_templates SET usage_count = usage_count + 1 WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("increment template usage: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
