// Package memory is the in-process backend. Every collection lives in
// memory and is lost on restart.
package memory

import (
	"github.com/utafrali/reputation/internal/repository"
)

// New returns a Store whose collections are all empty.
func New() repository.Store {
	return repository.Store{
		Reviews:     NewReviewRepository(),
		Sources:     NewSourceRepository(),
		Competitors: NewCompetitorRepository(),
		Templates:   NewTemplateRepository(),
		Responses:   NewResponseRepository(),
		Metrics:     NewMetricsRepository(),
	}
}
