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

const sourceColumns = `id, name, type, url, api_key, credentials, enabled, last_sync, sync_frequency`

// SourceRepository implements repository.SourceRepository using PostgreSQL.
// API keys and credential values pass through sealer on the way in and out.
type SourceRepository struct {
	pool   database.DBTX
	sealer *Sealer
}

// NewSourceRepository creates a new PostgreSQL-backed source repository.
// A nil sealer stores secrets as plain text.
func NewSourceRepository(pool database.DBTX, sealer *Sealer) *SourceRepository {
	return &SourceRepository{pool: pool, sealer: sealer}
}

func (r *SourceRepository) args(s *domain.ReviewSource) ([]any, error) {
	apiKey, err := r.sealer.Seal(s.APIKey)
	if err != nil {
		return nil, fmt.Errorf("seal api key: %w", err)
	}
	credentials, err := r.sealer.sealMap(s.Credentials)
	if err != nil {
		return nil, fmt.Errorf("seal credentials: %w", err)
	}
	credentialsJSON, err := nullableJSON(credentials, credentials == nil)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}
	return []any{s.ID, s.Name, s.Type, s.URL, apiKey, credentialsJSON, s.Enabled, s.LastSync, s.SyncFrequency}, nil
}

func (r *SourceRepository) scan(row scanner) (*domain.ReviewSource, error) {
	var (
		s               domain.ReviewSource
		credentialsJSON []byte
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Type, &s.URL, &s.APIKey, &credentialsJSON,
		&s.Enabled, &s.LastSync, &s.SyncFrequency); err != nil {
		return nil, err
	}
	if _, err := decodeJSON(credentialsJSON, &s.Credentials); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	apiKey, err := r.sealer.Open(s.APIKey)
	if err != nil {
		return nil, fmt.Errorf("api key: %w", err)
	}
	s.APIKey = apiKey
	if err := r.sealer.openMap(s.Credentials); err != nil {
		return nil, err
	}
	return &s, nil
}

// Add inserts s with a fresh ID.
func (r *SourceRepository) Add(ctx context.Context, s *domain.ReviewSource) error {
	s.ID = uuid.NewString()
	args, err := r.args(s)
	if err != nil {
		return err
	}
	query := `INSERT INTO review_sources (` + sourceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

// Get retrieves a source by its ID.
func (r *SourceRepository) Get(ctx context.Context, id string) (*domain.ReviewSource, bool, error) {
	s, err := r.scan(r.pool.QueryRow(ctx, `SELECT `+sourceColumns+` FROM review_sources WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get source: %w", err)
	}
	return s, true, nil
}

// List returns every source in insertion order.
func (r *SourceRepository) List(ctx context.Context) ([]domain.ReviewSource, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sourceColumns+` FROM review_sources ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	sources := []domain.ReviewSource{}
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		sources = append(sources, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}
	return sources, nil
}

// Update merges patch into the stored source under a row lock.
func (r *SourceRepository) Update(ctx context.Context, id string, patch domain.SourcePatch) (*domain.ReviewSource, bool, error) {
	var s *domain.ReviewSource
	found, err := updateInTx(ctx, r.pool, "source",
		func(tx pgx.Tx) error {
			var err error
			s, err = r.scan(tx.QueryRow(ctx, `SELECT `+sourceColumns+` FROM review_sources WHERE id = $1 FOR UPDATE`, id))
			return err
		},
		func(tx pgx.Tx) error {
			patch.Apply(s)
			args, err := r.args(s)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `UPDATE review_sources
				SET name = $2, type = $3, url = $4, api_key = $5, credentials = $6,
				    enabled = $7, last_sync = $8, sync_frequency = $9
				WHERE id = $1`, args...)
			return err
		},
	)
	if err != nil || !found {
		return nil, false, err
	}
	return s, true, nil
}

// Delete removes a source by its ID.
func (r *SourceRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.pool, "review_sources", id)
}
