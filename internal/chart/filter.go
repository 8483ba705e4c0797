package chart

import (
	"sort"
	"time"

	"crypto_adda/internal/domain"
)

// ChartPoint is a price point with its label already parsed.
type ChartPoint struct {
	domain.PricePoint
	Time time.Time `json:"-"`
}

// WindowStart returns midnight of the day that lies w days before now.
func WindowStart(w domain.Window, now time.Time) time.Time {
	return StartOfDay(now.AddDate(0, 0, -w.Days()))
}

// FilterRange keeps the points of series dated on or after the window
// start and returns them sorted oldest first. Points whose label does not
// parse are dropped. The input slice is never modified.
func FilterRange(series domain.PriceSeries, w domain.Window, now time.Time) []ChartPoint {
	start := WindowStart(w, now)
	loc := now.Location()

	out := make([]ChartPoint, 0, len(series))
	for _, p := range series {
		t, ok := ParseDate(p.Date, loc)
		if !ok || t.Before(start) {
			continue
		}
		out = append(out, ChartPoint{PricePoint: p, Time: t})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// Series strips the parsed times off a filtered result.
func Series(points []ChartPoint) domain.PriceSeries {
	out := make(domain.PriceSeries, len(points))
	for i, p := range points {
		out[i] = p.PricePoint
	}
	return out
}
