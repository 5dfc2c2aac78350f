package sentiment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/httpclient"
)

var analysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reputation_sentiment_analysis_total",
	Help: "Sentiment analyses by the analyzer that produced the result",
}, []string{"analyzer"})

type remoteRequest struct {
	Text string `json:"text"`
}

type remoteResponse struct {
	Score      float64            `json:"score"`
	Magnitude  float64            `json:"magnitude"`
	Categories map[string]float64 `json:"categories,omitempty"`
	Keywords   []domain.Keyword   `json:"keywords"`
}

// RemoteAnalyzer posts text to an external scoring API through a circuit
// breaker. Any failure, including an open breaker, is answered by the
// fallback analyzer.
type RemoteAnalyzer struct {
	client   httpclient.Doer
	url      string
	fallback Analyzer
	logger   *slog.Logger
}

// NewRemoteAnalyzer creates an analyzer calling url with client.
func NewRemoteAnalyzer(client httpclient.Doer, url string, fallback Analyzer, logger *slog.Logger) *RemoteAnalyzer {
	return &RemoteAnalyzer{client: client, url: url, fallback: fallback, logger: logger}
}

// Analyze scores text remotely, falling back locally on error.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	var resp remoteResponse
	err := httpclient.PostJSON(ctx, a.client, a.url, "sentiment", remoteRequest{Text: text}, &resp)
	if err == nil {
		analysisTotal.WithLabelValues("remote").Inc()
		keywords := resp.Keywords
		if keywords == nil {
			keywords = []domain.Keyword{}
		}
		return &Analysis{
			Sentiment: domain.Sentiment{
				Score:      clamp(resp.Score, -1, 1),
				Magnitude:  max(resp.Magnitude, 0),
				Categories: resp.Categories,
			},
			Keywords: keywords,
		}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	level := slog.LevelWarn
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		level = slog.LevelDebug
	}
	a.logger.Log(ctx, level, "remote sentiment analysis failed, using fallback",
		slog.String("error", err.Error()),
	)
	analysisTotal.WithLabelValues("fallback").Inc()
	return a.fallback.Analyze(ctx, text)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
