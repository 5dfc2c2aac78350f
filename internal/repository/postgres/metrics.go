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

const metricsColumns = `id, period, start_date, end_date, metrics, competitive, generated_at`

// MetricsRepository implements the append-only metrics history using
// PostgreSQL. It never updates or deletes rows.
type MetricsRepository struct {
	pool database.DBTX
}

// NewMetricsRepository creates a new PostgreSQL-backed metrics repository.
func NewMetricsRepository(pool database.DBTX) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

func scanMetrics(row scanner) (*domain.ReputationMetrics, error) {
	var (
		m               domain.ReputationMetrics
		metricsJSON     []byte
		competitiveJSON []byte
	)
	if err := row.Scan(&m.ID, &m.Period, &m.StartDate, &m.EndDate, &metricsJSON, &competitiveJSON, &m.GeneratedAt); err != nil {
		return nil, err
	}
	if _, err := decodeJSON(metricsJSON, &m.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics data: %w", err)
	}
	var c domain.CompetitiveComparison
	ok, err := decodeJSON(competitiveJSON, &c)
	if err != nil {
		return nil, fmt.Errorf("unmarshal competitive comparison: %w", err)
	}
	if ok {
		m.Competitive = &c
	}
	return &m, nil
}

// Append stores m under a fresh ID.
func (r *MetricsRepository) Append(ctx context.Context, m *domain.ReputationMetrics) (err error) {
	query := `INSERT INTO reputation_metrics (` + metricsColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "AppendMetrics", query)
	defer func() { end(err) }()

	metricsJSON, err := nullableJSON(m.Metrics, false)
	if err != nil {
		return fmt.Errorf("marshal metrics data: %w", err)
	}
	competitiveJSON, err := nullableJSON(m.Competitive, m.Competitive == nil)
	if err != nil {
		return fmt.Errorf("marshal competitive comparison: %w", err)
	}

	id := uuid.NewString()
	if _, err = r.pool.Exec(ctx, query,
		id, m.Period, m.StartDate, m.EndDate, metricsJSON, competitiveJSON, m.GeneratedAt,
	); err != nil {
		return fmt.Errorf("insert metrics: %w", err)
	}
	m.ID = id
	return nil
}

// Get retrieves a metrics record by its ID.
func (r *MetricsRepository) Get(ctx context.Context, id string) (*domain.ReputationMetrics, bool, error) {
	m, err := scanMetrics(r.pool.QueryRow(ctx, `SELECT `+metricsColumns+` FROM reputation_metrics WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get metrics: %w", err)
	}
	return m, true, nil
}

// List returns the history in generation order.
func (r *MetricsRepository) List(ctx context.Context) ([]domain.ReputationMetrics, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+metricsColumns+` FROM reputation_metrics ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	history := []domain.ReputationMetrics{}
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metrics row: %w", err)
		}
		history = append(history, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metrics rows: %w", err)
	}
	return history, nil
}
