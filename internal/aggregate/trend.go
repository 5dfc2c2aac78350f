package aggregate

import (
	"sort"
	"time"

	"github.com/utafrali/reputation/internal/domain"
)

// MaxTrendBuckets bounds a series. A window too long for the period's
// natural bucket width falls back to the next wider one; past yearly
// buckets each bucket spans several years.
const MaxTrendBuckets = 400

type bucketWidth int

const (
	widthHour bucketWidth = iota
	widthDay
	widthWeek
	widthMonth
	widthQuarter
	widthYear
)

func widthFor(period string) bucketWidth {
	switch period {
	case domain.PeriodDaily:
		return widthHour
	case domain.PeriodWeekly, domain.PeriodMonthly:
		return widthDay
	case domain.PeriodQuarterly:
		return widthWeek
	default:
		return widthMonth
	}
}

// anchor is the start of the first bucket. Hour, day and week buckets
// start at start itself; calendar buckets start on the first day of the
// month, quarter or year containing it.
func (w bucketWidth) anchor(t time.Time) time.Time {
	switch w {
	case widthMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case widthQuarter:
		q := (t.Month()-1)/3*3 + 1
		return time.Date(t.Year(), q, 1, 0, 0, 0, 0, t.Location())
	case widthYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return t
	}
}

// at returns the start of bucket i, each bucket spanning step units.
// Every bucket is derived from the anchor so month ends never drift.
func (w bucketWidth) at(anchor time.Time, i, step int) time.Time {
	n := i * step
	switch w {
	case widthHour:
		return anchor.Add(time.Duration(n) * time.Hour)
	case widthDay:
		return anchor.AddDate(0, 0, n)
	case widthWeek:
		return anchor.AddDate(0, 0, 7*n)
	case widthMonth:
		return anchor.AddDate(0, n, 0)
	case widthQuarter:
		return anchor.AddDate(0, 3*n, 0)
	default:
		return anchor.AddDate(n, 0, 0)
	}
}

// count is the number of single-unit buckets from anchor through end.
func (w bucketWidth) count(anchor, end time.Time) int {
	months := (end.Year()-anchor.Year())*12 + int(end.Month()) - int(anchor.Month())
	switch w {
	case widthHour:
		return int(end.Sub(anchor)/time.Hour) + 1
	case widthDay:
		return int(end.Sub(anchor)/(24*time.Hour)) + 1
	case widthWeek:
		return int(end.Sub(anchor)/(7*24*time.Hour)) + 1
	case widthMonth:
		return months + 1
	case widthQuarter:
		return months/3 + 1
	default:
		return end.Year() - anchor.Year() + 1
	}
}

// series is a run of adjacent buckets. Bucket i covers
// [width.at(anchor, i, step), width.at(anchor, i+1, step)).
type series struct {
	width  bucketWidth
	anchor time.Time
	step   int
	starts []time.Time
}

func (s series) bucketEnd(i int) time.Time {
	return s.width.at(s.anchor, i+1, s.step)
}

// index returns the bucket holding t, or -1 when t is outside the series.
func (s series) index(t time.Time) int {
	idx := sort.Search(len(s.starts), func(j int) bool { return s.starts[j].After(t) }) - 1
	if idx < 0 || !t.Before(s.bucketEnd(idx)) {
		return -1
	}
	return idx
}

// buckets covers [start, end] with at most MaxTrendBuckets buckets.
func buckets(period string, start, end time.Time) series {
	if end.Before(start) {
		return series{}
	}
	w := widthFor(period)
	for w < widthYear && w.count(w.anchor(start), end) > MaxTrendBuckets {
		w++
	}
	anchor := w.anchor(start)
	step := 1
	if n := w.count(anchor, end); n > MaxTrendBuckets {
		step = (n + MaxTrendBuckets - 1) / MaxTrendBuckets
	}

	s := series{width: w, anchor: anchor, step: step}
	for i := 0; ; i++ {
		t := w.at(anchor, i, step)
		if t.After(end) {
			break
		}
		s.starts = append(s.starts, t)
	}
	return s
}

// Trends buckets reviews over [start, end]. The volume series has a point
// for every bucket; the rating series only for buckets holding reviews.
func Trends(period string, start, end time.Time, reviews []domain.Review) (rating, volume []domain.TrendPoint) {
	s := buckets(period, start, end)
	counts := make([]int, len(s.starts))
	sums := make([]float64, len(s.starts))

	for i := range reviews {
		at := reviews[i].PublishedAt
		if at.Before(start) || at.After(end) {
			continue
		}
		idx := s.index(at)
		if idx < 0 {
			continue
		}
		counts[idx]++
		sums[idx] += float64(reviews[i].Rating)
	}

	rating = []domain.TrendPoint{}
	volume = make([]domain.TrendPoint, 0, len(s.starts))
	for i, ts := range s.starts {
		volume = append(volume, domain.TrendPoint{Timestamp: ts, Value: float64(counts[i])})
		if counts[i] > 0 {
			rating = append(rating, domain.TrendPoint{Timestamp: ts, Value: sums[i] / float64(counts[i])})
		}
	}
	return rating, volume
}
