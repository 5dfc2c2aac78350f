// Package postgres implements the repository contracts on PostgreSQL.
// Every table carries a seq column so listings keep insertion order.
package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/reputation/internal/repository"
	"github.com/utafrali/reputation/pkg/database"
)

// NewStore returns every repository backed by db. sealer may be nil.
func NewStore(db database.DBTX, sealer *Sealer) repository.Store {
	return repository.Store{
		Reviews:     NewReviewRepository(db),
		Sources:     NewSourceRepository(db, sealer),
		Competitors: NewCompetitorRepository(db),
		Templates:   NewTemplateRepository(db),
		Responses:   NewResponseRepository(db),
		Metrics:     NewMetricsRepository(db),
	}
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// nullableJSON marshals v, storing SQL NULL for a nil value.
func nullableJSON(v any, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

// decodeJSON unmarshals data into dst unless it is NULL. It reports
// whether anything was decoded.
func decodeJSON(data []byte, dst any) (bool, error) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s as a literal substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// updateInTx locks the row selected by lockQuery, lets apply mutate the
// scanned entity and persists it. found is false when no row matched.
func updateInTx(ctx context.Context, db database.DBTX, what string,
	lock func(tx pgx.Tx) error, apply func(tx pgx.Tx) error,
) (found bool, err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin update %s: %w", what, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lock(tx); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lock %s: %w", what, err)
	}
	if err := apply(tx); err != nil {
		return false, fmt.Errorf("update %s: %w", what, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit update %s: %w", what, err)
	}
	return true, nil
}

// deleteByID removes the row with id from table.
func deleteByID(ctx context.Context, db database.DBTX, table, id string) (bool, error) {
	ct, err := db.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	return ct.RowsAffected() > 0, nil
}
