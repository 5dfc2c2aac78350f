package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/database"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

// ─── Review rows ────────────────────────────────────────────────────────────

var reviewColumnNames = []string{
	"id", "source_id", "author_name", "author_id", "author_avatar", "rating", "title", "content",
	"published_at", "updated_at", "status", "sentiment", "keywords", "tags", "assigned_to", "response_id",
}

func sampleReview() domain.Review {
	return domain.Review{
		ID:          "rev-1",
		SourceID:    "src-google",
		AuthorName:  "Ada",
		Rating:      5,
		Content:     "Lovely espresso",
		PublishedAt: now,
		Status:      domain.ReviewStatusNew,
		Sentiment:   &domain.Sentiment{Score: 0.7, Magnitude: 1.2},
		Keywords:    []domain.Keyword{{Word: "espresso", Relevance: 1}},
		Tags:        []string{"coffee"},
	}
}

func reviewRow(r domain.Review) []any {
	var sentimentJSON []byte
	if r.Sentiment != nil {
		sentimentJSON, _ = json.Marshal(r.Sentiment)
	}
	keywordsJSON, _ := json.Marshal(r.Keywords)
	return []any{
		r.ID, r.SourceID, r.AuthorName, r.AuthorID, r.AuthorAvatar, r.Rating, r.Title, r.Content,
		r.PublishedAt, r.UpdatedAt, r.Status, sentimentJSON, keywordsJSON, r.Tags, r.AssignedTo, r.ResponseID,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ReviewRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestReviewRepository_Add_AppliesDefaults(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(anyArgs(16)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r := domain.Review{SourceID: "src-google", Rating: 4, Content: "ok", PublishedAt: now}
	require.NoError(t, repo.Add(context.Background(), &r))

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, domain.ReviewStatusNew, r.Status)
	require.NotNil(t, r.Sentiment)
	assert.Equal(t, domain.Sentiment{}, *r.Sentiment)
	assert.NotNil(t, r.Keywords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Add_Error(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(anyArgs(16)...).
		WillReturnError(errors.New("connection reset"))

	err := repo.Add(context.Background(), &domain.Review{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert review")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Get_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	r := sampleReview()
	mock.ExpectQuery("FROM reviews WHERE id").
		WithArgs(r.ID).
		WillReturnRows(pgxmock.NewRows(reviewColumnNames).AddRow(reviewRow(r)...))

	got, found, err := repo.Get(context.Background(), r.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, 0.7, got.Sentiment.Score)
	assert.Equal(t, r.Keywords, got.Keywords)
	assert.Equal(t, []string{"coffee"}, got.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Get_NullSentiment(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	r := sampleReview()
	r.Sentiment = nil
	r.Keywords = nil
	mock.ExpectQuery("FROM reviews WHERE id").
		WithArgs(r.ID).
		WillReturnRows(pgxmock.NewRows(reviewColumnNames).AddRow(reviewRow(r)...))

	got, found, err := repo.Get(context.Background(), r.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, got.Sentiment)
	assert.Equal(t, 0.0, got.SentimentScore())
	assert.Equal(t, []domain.Keyword{}, got.Keywords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Get_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("FROM reviews WHERE id").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	got, found, err := repo.Get(context.Background(), "missing-id")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Get_BackendError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("FROM reviews WHERE id").
		WithArgs("rev-1").
		WillReturnError(errors.New("boom"))

	_, found, err := repo.Get(context.Background(), "rev-1")
	require.Error(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_List_InsertionOrder(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	first, second := sampleReview(), sampleReview()
	second.ID = "rev-2"

	mock.ExpectQuery("FROM reviews ORDER BY seq").
		WillReturnRows(pgxmock.NewRows(reviewColumnNames).
			AddRow(reviewRow(first)...).
			AddRow(reviewRow(second)...))

	reviews, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "rev-1", reviews[0].ID)
	assert.Equal(t, "rev-2", reviews[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Find_WithFilters(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	start := now.Add(-24 * time.Hour)
	filter := domain.ReviewFilter{
		SourceID:    strPtr("src-google"),
		MinRating:   intPtr(4),
		StartDate:   &start,
		Sentiment:   strPtr(domain.SentimentPositive),
		HasResponse: boolPtr(false),
		Search:      strPtr("50%_off"),
		Tags:        []string{"coffee", "wifi"},
	}

	// source_id=$1, rating>=$2, published_at>=$3, score>$4, search=$5, tags=$6
	mock.ExpectQuery(`FROM reviews WHERE source_id = \$1 AND rating >= \$2 AND published_at >= \$3 .+ > \$4 AND response_id = '' AND \(content ILIKE \$5 OR author_name ILIKE \$5\) AND tags && \$6 ORDER BY seq`).
		WithArgs("src-google", 4, start, domain.PositiveThreshold, `%50\%\_off%`, []string{"coffee", "wifi"}).
		WillReturnRows(pgxmock.NewRows(reviewColumnNames).AddRow(reviewRow(sampleReview())...))

	reviews, err := repo.Find(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewConditions(t *testing.T) {
	tests := []struct {
		name     string
		filter   domain.ReviewFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "empty filter",
			filter:  domain.ReviewFilter{},
			wantSQL: "",
		},
		{
			name:     "neutral sentiment is inclusive on both thresholds",
			filter:   domain.ReviewFilter{Sentiment: strPtr(domain.SentimentNeutral)},
			wantSQL:  " WHERE " + sentimentScoreExpr + " BETWEEN $1 AND $2",
			wantArgs: []any{domain.NegativeThreshold, domain.PositiveThreshold},
		},
		{
			name:    "unknown sentiment class matches nothing",
			filter:  domain.ReviewFilter{Sentiment: strPtr("ecstatic")},
			wantSQL: " WHERE FALSE",
		},
		{
			name:    "empty search and tags impose nothing",
			filter:  domain.ReviewFilter{Search: strPtr(""), Tags: []string{}},
			wantSQL: "",
		},
		{
			name:     "rating range and assignee",
			filter:   domain.ReviewFilter{MinRating: intPtr(2), MaxRating: intPtr(3), AssignedTo: strPtr("sam")},
			wantSQL:  " WHERE rating >= $1 AND rating <= $2 AND assigned_to = $3",
			wantArgs: []any{2, 3, "sam"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := reviewConditions(tt.filter)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestReviewRepository_Update_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	r := sampleReview()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM reviews WHERE id = \\$1 FOR UPDATE").
		WithArgs(r.ID).
		WillReturnRows(pgxmock.NewRows(reviewColumnNames).AddRow(reviewRow(r)...))
	mock.ExpectExec("UPDATE reviews").
		WithArgs(anyArgs(16)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	got, found, err := repo.Update(context.Background(), r.ID, domain.ReviewPatch{
		Status:     strPtr(domain.ReviewStatusFlagged),
		AssignedTo: strPtr("sam"),
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.ReviewStatusFlagged, got.Status)
	assert.Equal(t, "sam", got.AssignedTo)
	assert.Equal(t, r.Content, got.Content)
	assert.Equal(t, r.Rating, got.Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reviews WHERE id = \\$1 FOR UPDATE").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	got, found, err := repo.Update(context.Background(), "missing-id", domain.ReviewPatch{Status: strPtr("read")})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_ExecError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	r := sampleReview()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM reviews WHERE id = \\$1 FOR UPDATE").
		WithArgs(r.ID).
		WillReturnRows(pgxmock.NewRows(reviewColumnNames).AddRow(reviewRow(r)...))
	mock.ExpectExec("UPDATE reviews").
		WithArgs(anyArgs(16)...).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, found, err := repo.Update(context.Background(), r.ID, domain.ReviewPatch{Status: strPtr("read")})
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "update review")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock)

	mock.ExpectExec("DELETE FROM reviews WHERE").
		WithArgs("rev-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM reviews WHERE").
		WithArgs("rev-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := repo.Delete(context.Background(), "rev-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), "rev-1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// SourceRepository
// ─────────────────────────────────────────────────────────────────────────────

var sourceColumnNames = []string{
	"id", "name", "type", "url", "api_key", "credentials", "enabled", "last_sync", "sync_frequency",
}

func TestSourceRepository_AddAndGet(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSourceRepository(mock, nil)

	s := domain.ReviewSource{
		Name:          "Google",
		Type:          domain.PlatformGoogle,
		Credentials:   map[string]string{"place_id": "abc"},
		Enabled:       true,
		SyncFrequency: domain.SyncDaily,
	}
	credJSON, _ := json.Marshal(s.Credentials)

	mock.ExpectExec("INSERT INTO review_sources").
		WithArgs(pgxmock.AnyArg(), s.Name, s.Type, "", "", credJSON, true, (*time.Time)(nil), domain.SyncDaily).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Add(context.Background(), &s))
	require.NotEmpty(t, s.ID)

	mock.ExpectQuery("FROM review_sources WHERE id").
		WithArgs(s.ID).
		WillReturnRows(pgxmock.NewRows(sourceColumnNames).
			AddRow(s.ID, s.Name, s.Type, "", "", credJSON, true, (*time.Time)(nil), domain.SyncDaily))

	got, found, err := repo.Get(context.Background(), s.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, s.Credentials, got.Credentials)
	assert.True(t, got.Enabled)
	assert.Nil(t, got.LastSync)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceRepository_Update_FlipsEnabled(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewSourceRepository(mock, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM review_sources WHERE id = \\$1 FOR UPDATE").
		WithArgs("src-1").
		WillReturnRows(pgxmock.NewRows(sourceColumnNames).
			AddRow("src-1", "Yelp", domain.PlatformYelp, "", "", []byte(nil), true, (*time.Time)(nil), domain.SyncHourly))
	mock.ExpectExec("UPDATE review_sources").
		WithArgs("src-1", "Yelp", domain.PlatformYelp, "", "", []byte(nil), false, (*time.Time)(nil), domain.SyncHourly).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	got, found, err := repo.Update(context.Background(), "src-1", domain.SourcePatch{Enabled: boolPtr(false)})
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, got.Enabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceRepository_SealsSecrets(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	sealer, err := NewSealer("source-key")
	require.NoError(t, err)
	repo := NewSourceRepository(mock, sealer)

	s := domain.ReviewSource{
		Name:          "Yelp",
		Type:          domain.PlatformYelp,
		APIKey:        "yelp-key",
		Credentials:   map[string]string{"client_secret": "shh"},
		SyncFrequency: domain.SyncDaily,
	}

	mock.ExpectExec("INSERT INTO review_sources").
		WithArgs(anyArgs(9)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Add(context.Background(), &s))
	assert.Equal(t, "yelp-key", s.APIKey, "caller keeps plain text")
	assert.Equal(t, "shh", s.Credentials["client_secret"])

	storedKey, err := sealer.Seal("yelp-key")
	require.NoError(t, err)
	sealedSecret, err := sealer.Seal("shh")
	require.NoError(t, err)
	storedCreds, _ := json.Marshal(map[string]string{"client_secret": sealedSecret})

	mock.ExpectQuery("FROM review_sources WHERE id").
		WithArgs(s.ID).
		WillReturnRows(pgxmock.NewRows(sourceColumnNames).
			AddRow(s.ID, s.Name, s.Type, "", storedKey, storedCreds, false, (*time.Time)(nil), domain.SyncDaily))

	got, found, err := repo.Get(context.Background(), s.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "yelp-key", got.APIKey)
	assert.Equal(t, map[string]string{"client_secret": "shh"}, got.Credentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceRepository_SealedRowWithoutKey(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	sealer, err := NewSealer("source-key")
	require.NoError(t, err)
	sealed, err := sealer.Seal("yelp-key")
	require.NoError(t, err)

	repo := NewSourceRepository(mock, nil)
	mock.ExpectQuery("FROM review_sources WHERE id").
		WithArgs("src-1").
		WillReturnRows(pgxmock.NewRows(sourceColumnNames).
			AddRow("src-1", "Yelp", domain.PlatformYelp, "", sealed, []byte(nil), true, (*time.Time)(nil), domain.SyncDaily))

	_, _, err = repo.Get(context.Background(), "src-1")
	assert.ErrorIs(t, err, ErrSealedValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// CompetitorRepository
// ─────────────────────────────────────────────────────────────────────────────

var competitorColumnNames = []string{"id", "name", "sources", "average_rating", "total_reviews", "last_updated"}

func TestCompetitorRepository_List(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCompetitorRepository(mock)

	rating := 4.4
	sourcesJSON, _ := json.Marshal([]domain.CompetitorSource{{Type: "google", URL: "https://g.example/bean"}})

	mock.ExpectQuery("FROM competitors ORDER BY seq").
		WillReturnRows(pgxmock.NewRows(competitorColumnNames).
			AddRow("c1", "Bean There", sourcesJSON, &rating, intPtr(120), &now).
			AddRow("c2", "Grind House", []byte("[]"), (*float64)(nil), (*int)(nil), (*time.Time)(nil)))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4.4, *got[0].AverageRating)
	assert.Equal(t, 120, *got[0].TotalReviews)
	assert.Len(t, got[0].Sources, 1)
	assert.Nil(t, got[1].AverageRating)
	assert.NotNil(t, got[1].Sources)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// TemplateRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestTemplateRepository_IncrementUsage(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewTemplateRepository(mock)

	mock.ExpectExec("UPDATE response_templates SET usage_count = usage_count \\+ 1").
		WithArgs("tpl-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE response_templates SET usage_count = usage_count \\+ 1").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.IncrementUsage(context.Background(), "tpl-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementUsage(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_Get(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewTemplateRepository(mock)

	mock.ExpectQuery("FROM response_templates WHERE id").
		WithArgs("tpl-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "content", "sentiment", "category", "usage_count", "success_rate"}).
			AddRow("tpl-1", "Thanks", "Thanks {{name}}!", "positive", "general", 3, 0.5))

	got, found, err := repo.Get(context.Background(), "tpl-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Thanks Ada!", got.Render("Ada"))
	assert.Equal(t, 3, got.UsageCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// ResponseRepository
// ─────────────────────────────────────────────────────────────────────────────

var responseColumnNames = []string{"id", "review_id", "content", "author_id", "template_id", "status", "created_at", "updated_at"}

func TestResponseRepository_Add_Defaults(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewResponseRepository(mock)

	mock.ExpectExec("INSERT INTO review_responses").
		WithArgs(pgxmock.AnyArg(), "rev-1", "Thank you", "", "", domain.ResponseStatusDraft, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r := domain.ReviewResponse{ReviewID: "rev-1", Content: "Thank you"}
	require.NoError(t, repo.Add(context.Background(), &r))
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseRepository_ListByReview(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewResponseRepository(mock)

	mock.ExpectQuery("FROM review_responses WHERE review_id = \\$1 ORDER BY seq").
		WithArgs("rev-1").
		WillReturnRows(pgxmock.NewRows(responseColumnNames).
			AddRow("resp-1", "rev-1", "Thanks", "", "", domain.ResponseStatusPublished, now, now))

	got, err := repo.ListByReview(context.Background(), "rev-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ResponseStatusPublished, got[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseRepository_Update_StampsUpdatedAt(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewResponseRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM review_responses WHERE id = \\$1 FOR UPDATE").
		WithArgs("resp-1").
		WillReturnRows(pgxmock.NewRows(responseColumnNames).
			AddRow("resp-1", "rev-1", "Thanks", "", "", domain.ResponseStatusDraft, now, now))
	mock.ExpectExec("UPDATE review_responses").
		WithArgs("resp-1", "Thanks", domain.ResponseStatusPublished, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	got, found, err := repo.Update(context.Background(), "resp-1", domain.ResponsePatch{Status: strPtr(domain.ResponseStatusPublished)})
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.UpdatedAt.After(now))
	assert.Equal(t, now, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// MetricsRepository
// ─────────────────────────────────────────────────────────────────────────────

var metricsColumnNames = []string{"id", "period", "start_date", "end_date", "metrics", "competitive", "generated_at"}

func TestMetricsRepository_Append(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewMetricsRepository(mock)

	m := domain.ReputationMetrics{
		Period:      domain.PeriodMonthly,
		StartDate:   now.AddDate(0, -1, 0),
		EndDate:     now,
		Metrics:     domain.MetricsData{AverageRating: 4, TotalReviews: 2},
		GeneratedAt: now,
	}
	dataJSON, _ := json.Marshal(m.Metrics)

	mock.ExpectExec("INSERT INTO reputation_metrics").
		WithArgs(pgxmock.AnyArg(), m.Period, m.StartDate, m.EndDate, dataJSON, []byte(nil), m.GeneratedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Append(context.Background(), &m))
	assert.NotEmpty(t, m.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsRepository_Append_ErrorLeavesIDEmpty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewMetricsRepository(mock)

	mock.ExpectExec("INSERT INTO reputation_metrics").
		WithArgs(anyArgs(7)...).
		WillReturnError(errors.New("disk full"))

	m := domain.ReputationMetrics{Period: domain.PeriodDaily}
	require.Error(t, repo.Append(context.Background(), &m))
	assert.Empty(t, m.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsRepository_Get_WithCompetitive(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewMetricsRepository(mock)

	data := domain.MetricsData{
		AverageRating:   4.5,
		TotalReviews:    2,
		ReviewsByRating: map[string]int{"4": 1, "5": 1},
	}
	cmp := domain.CompetitiveComparison{OurRating: 4.5, Rank: 1, Total: 2}
	dataJSON, _ := json.Marshal(data)
	cmpJSON, _ := json.Marshal(cmp)

	mock.ExpectQuery("FROM reputation_metrics WHERE id").
		WithArgs("met-1").
		WillReturnRows(pgxmock.NewRows(metricsColumnNames).
			AddRow("met-1", domain.PeriodWeekly, now.AddDate(0, 0, -7), now, dataJSON, cmpJSON, now))

	got, found, err := repo.Get(context.Background(), "met-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, data.ReviewsByRating, got.Metrics.ReviewsByRating)
	require.NotNil(t, got.Competitive)
	assert.Equal(t, 1, got.Competitive.Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStore_WiresEveryRepository(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	s := NewStore(mock, nil)
	assert.NotNil(t, s.Reviews)
	assert.NotNil(t, s.Sources)
	assert.NotNil(t, s.Competitors)
	assert.NotNil(t, s.Templates)
	assert.NotNil(t, s.Responses)
	assert.NotNil(t, s.Metrics)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%a\%b\_c\\d%`, containsPattern(`a%b_c\d`))
}
