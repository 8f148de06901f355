package service

import (
	"math"
	"slices"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

const (
	intradayBucket = 5 * time.Minute
	dailyBucket    = 24 * time.Hour
	chartMonth     = 30 * 24 * time.Hour
)

// bucketSeries groups points into fixed windows aligned to the Unix epoch.
// Each bucket becomes one point stamped with the window start, carrying the
// mean price and the mean volume rounded to a whole number.
// The result is sorted by timestamp ascending.
func bucketSeries(points []model.TimeSeriesPoint, width time.Duration) []model.TimeSeriesPoint {
	if len(points) == 0 {
		return []model.TimeSeriesPoint{}
	}

	type acc struct {
		priceSum, volumeSum float64
		n                   int
	}
	step := int64(width / time.Second)
	buckets := make(map[int64]*acc)

	for _, p := range points {
		start := floorDiv(p.Timestamp, step) * step
		a := buckets[start]
		if a == nil {
			a = &acc{}
			buckets[start] = a
		}
		a.priceSum += p.Price
		a.volumeSum += p.Volume
		a.n++
	}

	out := make([]model.TimeSeriesPoint, 0, len(buckets))
	for start, a := range buckets {
		out = append(out, model.TimeSeriesPoint{
			Timestamp: start,
			Price:     a.priceSum / float64(a.n),
			Volume:    math.Round(a.volumeSum / float64(a.n)),
		})
	}
	slices.SortFunc(out, func(a, b model.TimeSeriesPoint) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return out
}

// floorDiv rounds towards negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// rangeStart returns the earliest timestamp kept for r, and false when the
// range keeps everything. Months are 30 days; YTD starts on January 1st of
// the current year in loc.
func rangeStart(r model.ChartRange, now time.Time, loc *time.Location) (time.Time, bool) {
	switch r {
	case model.Range1W:
		return now.Add(-7 * dailyBucket), true
	case model.Range1M:
		return now.Add(-chartMonth), true
	case model.Range6M:
		return now.Add(-6 * chartMonth), true
	case model.RangeYTD:
		local := now.In(loc)
		return time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc), true
	case model.Range1Y:
		return now.Add(-12 * chartMonth), true
	case model.Range5Y:
		return now.Add(-60 * chartMonth), true
	default:
		return time.Time{}, false
	}
}

// filterByRange keeps points at or after the start of r.
func filterByRange(points []model.TimeSeriesPoint, r model.ChartRange, now time.Time, loc *time.Location) []model.TimeSeriesPoint {
	start, ok := rangeStart(r, now, loc)
	if !ok {
		return points
	}
	cutoff := start.Unix()
	out := make([]model.TimeSeriesPoint, 0, len(points))
	for _, p := range points {
		if p.Timestamp >= cutoff {
			out = append(out, p)
		}
	}
	return out
}

// smaOverlay returns a simple moving average aligned with points.
// Entries before the window fills are nil; a series shorter than period
// yields only nils.
func smaOverlay(points []model.TimeSeriesPoint, period int) []*float64 {
	out := make([]*float64, len(points))
	if period < 2 || len(points) < period {
		return out
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Price
	}

	sma := talib.Sma(closes, period)
	for i := period - 1; i < len(sma); i++ {
		if math.IsNaN(sma[i]) {
			continue
		}
		v := sma[i]
		out[i] = &v
	}
	return out
}
