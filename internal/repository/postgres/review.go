package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/database"
)

const reviewColumns = `id, source_id, author_name, author_id, author_avatar, rating, title, content, ` +
	`published_at, updated_at, status, sentiment, keywords, tags, assigned_to, response_id`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func reviewArgs(r *domain.Review) ([]any, error) {
	sentimentJSON, err := nullableJSON(r.Sentiment, r.Sentiment == nil)
	if err != nil {
		return nil, fmt.Errorf("marshal sentiment: %w", err)
	}
	keywordsJSON, err := nullableJSON(r.Keywords, false)
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		r.ID, r.SourceID, r.AuthorName, r.AuthorID, r.AuthorAvatar, r.Rating, r.Title, r.Content,
		r.PublishedAt, r.UpdatedAt, r.Status, sentimentJSON, keywordsJSON, tags, r.AssignedTo, r.ResponseID,
	}, nil
}

func scanReview(row scanner) (*domain.Review, error) {
	var (
		r             domain.Review
		sentimentJSON []byte
		keywordsJSON  []byte
	)
	if err := row.Scan(
		&r.ID, &r.SourceID, &r.AuthorName, &r.AuthorID, &r.AuthorAvatar, &r.Rating, &r.Title, &r.Content,
		&r.PublishedAt, &r.UpdatedAt, &r.Status, &sentimentJSON, &keywordsJSON, &r.Tags, &r.AssignedTo, &r.ResponseID,
	); err != nil {
		return nil, err
	}

	var s domain.Sentiment
	ok, err := decodeJSON(sentimentJSON, &s)
	if err != nil {
		return nil, fmt.Errorf("unmarshal sentiment: %w", err)
	}
	if ok {
		r.Sentiment = &s
	}
	if _, err := decodeJSON(keywordsJSON, &r.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshal keywords: %w", err)
	}
	if r.Keywords == nil {
		r.Keywords = []domain.Keyword{}
	}
	if len(r.Tags) == 0 {
		r.Tags = nil
	}
	return &r, nil
}

// Add inserts r with a fresh ID and the review defaults.
func (repo *ReviewRepository) Add(ctx context.Context, r *domain.Review) (err error) {
	r.ID = uuid.NewString()
	r.ApplyDefaults()

	query := `INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	ctx, end := database.TraceQuery(ctx, "AddReview", query)
	defer func() { end(err) }()

	args, err := reviewArgs(r)
	if err != nil {
		return err
	}
	if _, err = repo.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// Get retrieves a review by its ID.
func (repo *ReviewRepository) Get(ctx context.Context, id string) (_ *domain.Review, _ bool, err error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReview", query)
	defer func() { end(err) }()

	r, err := scanReview(repo.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get review: %w", err)
	}
	return r, true, nil
}

// List returns every review in insertion order.
func (repo *ReviewRepository) List(ctx context.Context) ([]domain.Review, error) {
	return repo.Find(ctx, domain.ReviewFilter{})
}

// Find returns the reviews matching filter in insertion order.
func (repo *ReviewRepository) Find(ctx context.Context, filter domain.ReviewFilter) (_ []domain.Review, err error) {
	where, args := reviewConditions(filter)
	query := `SELECT ` + reviewColumns + ` FROM reviews` + where + ` ORDER BY seq`

	ctx, end := database.TraceQuery(ctx, "FindReviews", query)
	defer func() { end(err) }()

	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

// sentimentScoreExpr mirrors Review.SentimentScore: a missing score is 0.
const sentimentScoreExpr = `COALESCE((sentiment->>'score')::double precision, 0)`

// reviewConditions renders filter as a WHERE clause with the same
// semantics as ReviewFilter.Matches.
func reviewConditions(f domain.ReviewFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(format string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, strings.ReplaceAll(format, "$?", fmt.Sprintf("$%d", len(args))))
	}

	if f.SourceID != nil {
		add("source_id = $?", *f.SourceID)
	}
	if f.MinRating != nil {
		add("rating >= $?", *f.MinRating)
	}
	if f.MaxRating != nil {
		add("rating <= $?", *f.MaxRating)
	}
	if f.Status != nil {
		add("status = $?", *f.Status)
	}
	if f.StartDate != nil {
		add("published_at >= $?", *f.StartDate)
	}
	if f.EndDate != nil {
		add("published_at <= $?", *f.EndDate)
	}
	if f.Sentiment != nil {
		switch *f.Sentiment {
		case domain.SentimentPositive:
			add(sentimentScoreExpr+" > $?", domain.PositiveThreshold)
		case domain.SentimentNegative:
			add(sentimentScoreExpr+" < $?", domain.NegativeThreshold)
		case domain.SentimentNeutral:
			args = append(args, domain.NegativeThreshold, domain.PositiveThreshold)
			conditions = append(conditions, fmt.Sprintf("%s BETWEEN $%d AND $%d", sentimentScoreExpr, len(args)-1, len(args)))
		default:
			conditions = append(conditions, "FALSE")
		}
	}
	if f.HasResponse != nil {
		if *f.HasResponse {
			conditions = append(conditions, "response_id <> ''")
		} else {
			conditions = append(conditions, "response_id = ''")
		}
	}
	if f.Search != nil && *f.Search != "" {
		add("(content ILIKE $? OR author_name ILIKE $?)", containsPattern(*f.Search))
	}
	if len(f.Tags) > 0 {
		add("tags && $?", f.Tags)
	}
	if f.AssignedTo != nil {
		add("assigned_to = $?", *f.AssignedTo)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Update merges patch into the stored review under a row lock.
func (repo *ReviewRepository) Update(ctx context.Context, id string, patch domain.ReviewPatch) (_ *domain.Review, _ bool, err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateReview", "UPDATE reviews")
	defer func() { end(err) }()

	var r *domain.Review
	found, err := updateInTx(ctx, repo.pool, "review",
		func(tx pgx.Tx) error {
			var err error
			r, err = scanReview(tx.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1 FOR UPDATE`, id))
			return err
		},
		func(tx pgx.Tx) error {
			patch.Apply(r)
			args, err := reviewArgs(r)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `UPDATE reviews
				SET source_id = $2, author_name = $3, author_id = $4, author_avatar = $5, rating = $6,
				    title = $7, content = $8, published_at = $9, updated_at = $10, status = $11,
				    sentiment = $12, keywords = $13, tags = $14, assigned_to = $15, response_id = $16
				WHERE id = $1`, args...)
			return err
		},
	)
	if err != nil || !found {
		return nil, false, err
	}
	return r, true, nil
}

// Delete removes a review by its ID.
func (repo *ReviewRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, repo.pool, "reviews", id)
}
