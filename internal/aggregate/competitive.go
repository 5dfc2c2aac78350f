package aggregate

import (
	"sort"

	"github.com/utafrali/reputation/internal/domain"
)

// Compare ranks ourRating against every competitor with a cached average.
// It returns nil when no competitor has one. Ties share the better rank.
func Compare(ourRating float64, competitors []domain.Competitor) *domain.CompetitiveComparison {
	standings := make([]domain.CompetitorStanding, 0, len(competitors))
	for _, c := range competitors {
		if c.AverageRating == nil {
			continue
		}
		s := domain.CompetitorStanding{ID: c.ID, Name: c.Name, AverageRating: *c.AverageRating}
		if c.TotalReviews != nil {
			s.TotalReviews = *c.TotalReviews
		}
		standings = append(standings, s)
	}
	if len(standings) == 0 {
		return nil
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].AverageRating > standings[j].AverageRating
	})

	rank := 1
	for _, s := range standings {
		if s.AverageRating > ourRating {
			rank++
		}
	}

	return &domain.CompetitiveComparison{
		OurRating:   ourRating,
		Rank:        rank,
		Total:       len(standings) + 1,
		Competitors: standings,
	}
}
