package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/reputation/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func sampleReview(rating int, status string) *domain.Review {
	return &domain.Review{
		SourceID:    "src-google",
		AuthorName:  "Ada Lovelace",
		Rating:      rating,
		Title:       "Visit",
		Content:     "Great coffee, slow service",
		PublishedAt: time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC),
		Status:      status,
		Tags:        []string{"coffee"},
	}
}

// ---------------------------------------------------------------------------
// Reviews
// ---------------------------------------------------------------------------

func TestReviewRepository_AddRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()

	in := sampleReview(5, "")
	input := *in
	require.NoError(t, repo.Add(ctx, in))
	require.NotEmpty(t, in.ID)

	got, ok, err := repo.Get(ctx, in.ID)
	require.NoError(t, err)
	require.True(t, ok)

	want := input
	want.ID = in.ID
	want.Status = domain.ReviewStatusNew
	want.Sentiment = &domain.Sentiment{Score: 0, Magnitude: 0}
	want.Keywords = []domain.Keyword{}
	assert.Equal(t, want, *got)
}

func TestReviewRepository_AddAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		r := sampleReview(4, "")
		require.NoError(t, repo.Add(ctx, r))
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestReviewRepository_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()

	r := sampleReview(3, domain.ReviewStatusNew)
	require.NoError(t, repo.Add(ctx, r))
	before, _, _ := repo.Get(ctx, r.ID)

	updated, ok, err := repo.Update(ctx, r.ID, domain.ReviewPatch{Status: ptr(domain.ReviewStatusFlagged)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.ReviewStatusFlagged, updated.Status)

	want := *before
	want.Status = domain.ReviewStatusFlagged
	got, _, _ := repo.Get(ctx, r.ID)
	assert.Equal(t, want, *got)
}

func TestReviewRepository_UpdateMissingIsAbsence(t *testing.T) {
	repo := NewReviewRepository()

	got, ok, err := repo.Update(context.Background(), "nope", domain.ReviewPatch{Rating: ptr(1)})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestReviewRepository_DeleteIsTerminal(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()

	keep := sampleReview(4, "")
	gone := sampleReview(2, "")
	require.NoError(t, repo.Add(ctx, keep))
	require.NoError(t, repo.Add(ctx, gone))

	deleted, err := repo.Delete(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok, err := repo.Get(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	again, err := repo.Delete(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestReviewRepository_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()

	var ids []string
	for i := 0; i < 5; i++ {
		r := sampleReview(i+1, "")
		require.NoError(t, repo.Add(ctx, r))
		ids = append(ids, r.ID)
	}
	_, _ = repo.Delete(ctx, ids[1])

	all, _ := repo.List(ctx)
	var got []string
	for _, r := range all {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{ids[0], ids[2], ids[3], ids[4]}, got)
}

func TestReviewRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()

	r := sampleReview(5, "")
	require.NoError(t, repo.Add(ctx, r))

	r.Tags[0] = "mutated-input"
	got, _, _ := repo.Get(ctx, r.ID)
	got.Tags[0] = "mutated-output"
	got.Sentiment.Score = 0.9

	all, _ := repo.List(ctx)
	all[0].Rating = 1

	fresh, _, _ := repo.Get(ctx, r.ID)
	assert.Equal(t, []string{"coffee"}, fresh.Tags)
	assert.Equal(t, 0.0, fresh.Sentiment.Score)
	assert.Equal(t, 5, fresh.Rating)
}

func TestReviewRepository_FindConjunction(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()

	fixtures := []struct {
		rating int
		status string
	}{
		{5, domain.ReviewStatusNew},
		{4, domain.ReviewStatusNew},
		{4, domain.ReviewStatusRead},
		{3, domain.ReviewStatusNew},
		{1, domain.ReviewStatusFlagged},
	}
	for _, f := range fixtures {
		require.NoError(t, repo.Add(ctx, sampleReview(f.rating, f.status)))
	}

	got, err := repo.Find(ctx, domain.ReviewFilter{MinRating: ptr(4), Status: ptr(domain.ReviewStatusNew)})
	require.NoError(t, err)

	all, _ := repo.List(ctx)
	var want []domain.Review
	for _, r := range all {
		if r.Rating >= 4 && r.Status == domain.ReviewStatusNew {
			want = append(want, r)
		}
	}
	assert.Equal(t, want, got)
	assert.Len(t, got, 2)
}

func TestReviewRepository_FindEmptyResultIsNotNil(t *testing.T) {
	repo := NewReviewRepository()
	got, err := repo.Find(context.Background(), domain.ReviewFilter{Status: ptr("archived")})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReviewRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := sampleReview(i%5+1, "")
			_ = repo.Add(ctx, r)
			_, _, _ = repo.Update(ctx, r.ID, domain.ReviewPatch{Tags: []string{fmt.Sprint(i)}})
			_, _ = repo.Find(ctx, domain.ReviewFilter{MinRating: ptr(3)})
		}(i)
	}
	wg.Wait()

	all, _ := repo.List(ctx)
	assert.Len(t, all, 20)
}

// ---------------------------------------------------------------------------
// Sources, competitors, templates
// ---------------------------------------------------------------------------

func TestSourceRepository_EnabledFlip(t *testing.T) {
	ctx := context.Background()
	repo := NewSourceRepository()

	src := &domain.ReviewSource{
		Name:          "Yelp Downtown",
		Type:          domain.PlatformYelp,
		URL:           "https://yelp.example/biz",
		Credentials:   map[string]string{"token": "t"},
		Enabled:       false,
		SyncFrequency: domain.SyncDaily,
	}
	require.NoError(t, repo.Add(ctx, src))
	before, _, _ := repo.Get(ctx, src.ID)

	updated, ok, err := repo.Update(ctx, src.ID, domain.SourcePatch{Enabled: ptr(true)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, updated.Enabled)

	got, _, _ := repo.Get(ctx, src.ID)
	want := *before
	want.Enabled = true
	assert.Equal(t, want, *got)
}

func TestSourceRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewSourceRepository()

	a := &domain.ReviewSource{Name: "A", Type: domain.PlatformGoogle}
	b := &domain.ReviewSource{Name: "B", Type: domain.PlatformCustom}
	require.NoError(t, repo.Add(ctx, a))
	require.NoError(t, repo.Add(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)

	ok, _ := repo.Delete(ctx, a.ID)
	assert.True(t, ok)
	all, _ := repo.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "B", all[0].Name)

	_, ok, _ = repo.Update(ctx, a.ID, domain.SourcePatch{Name: ptr("x")})
	assert.False(t, ok)
}

func TestCompetitorRepository_DefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewCompetitorRepository()

	c := &domain.Competitor{Name: "Rival Roasters"}
	require.NoError(t, repo.Add(ctx, c))

	got, ok, _ := repo.Get(ctx, c.ID)
	require.True(t, ok)
	assert.NotNil(t, got.Sources)

	updated, ok, _ := repo.Update(ctx, c.ID, domain.CompetitorPatch{AverageRating: ptr(4.4)})
	require.True(t, ok)
	assert.Equal(t, 4.4, *updated.AverageRating)
	assert.Equal(t, "Rival Roasters", updated.Name)
}

func TestTemplateRepository_IncrementUsage(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository()

	tmpl := &domain.ResponseTemplate{Name: "Thanks", Content: "Thanks {{name}}", SuccessRate: 0.5}
	require.NoError(t, repo.Add(ctx, tmpl))

	for i := 0; i < 3; i++ {
		ok, err := repo.IncrementUsage(ctx, tmpl.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	got, _, _ := repo.Get(ctx, tmpl.ID)
	assert.Equal(t, 3, got.UsageCount)
	assert.Equal(t, 0.5, got.SuccessRate)

	ok, _ := repo.IncrementUsage(ctx, "missing")
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Responses and metrics
// ---------------------------------------------------------------------------

func TestResponseRepository_ListByReview(t *testing.T) {
	ctx := context.Background()
	repo := NewResponseRepository()

	r1 := &domain.ReviewResponse{ReviewID: "rev-1", Content: "a"}
	r2 := &domain.ReviewResponse{ReviewID: "rev-2", Content: "b"}
	r3 := &domain.ReviewResponse{ReviewID: "rev-1", Content: "c", Status: domain.ResponseStatusPublished}
	for _, r := range []*domain.ReviewResponse{r1, r2, r3} {
		require.NoError(t, repo.Add(ctx, r))
	}

	assert.Equal(t, domain.ResponseStatusDraft, r1.Status)
	assert.False(t, r1.CreatedAt.IsZero())
	assert.Equal(t, r1.CreatedAt, r1.UpdatedAt)

	got, err := repo.ListByReview(ctx, "rev-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Content)
	assert.Equal(t, "c", got[1].Content)
}

func TestResponseRepository_UpdateStampsTime(t *testing.T) {
	ctx := context.Background()
	repo := NewResponseRepository()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &domain.ReviewResponse{ReviewID: "rev-1", Content: "draft", CreatedAt: created}
	require.NoError(t, repo.Add(ctx, r))

	got, ok, err := repo.Update(ctx, r.ID, domain.ResponsePatch{Status: ptr(domain.ResponseStatusPublished)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.ResponseStatusPublished, got.Status)
	assert.Equal(t, "draft", got.Content)
	assert.True(t, got.UpdatedAt.After(created))
}

func TestMetricsRepository_AppendOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewMetricsRepository()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	first := &domain.ReputationMetrics{Period: domain.PeriodMonthly, StartDate: start, EndDate: end}
	second := &domain.ReputationMetrics{Period: domain.PeriodMonthly, StartDate: start, EndDate: end}
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	assert.NotEqual(t, first.ID, second.ID)
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, ok, err := repo.Get(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)
}

func TestNew_WiresEveryCollection(t *testing.T) {
	store := New()
	assert.NotNil(t, store.Reviews)
	assert.NotNil(t, store.Sources)
	assert.NotNil(t, store.Competitors)
	assert.NotNil(t, store.Templates)
	assert.NotNil(t, store.Responses)
	assert.NotNil(t, store.Metrics)
}
