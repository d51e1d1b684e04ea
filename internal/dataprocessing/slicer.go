package dataprocessing

import (
	"sort"
	"time"

	"bnfcli/pkg/contracts/domain"
)

// GroupByDate partitions ticks by trading date in ascending order. Rows
// without a date are excluded. Each group keeps only CE rows, stably sorted
// by time; Total still counts every row of the date.
func GroupByDate(ticks []domain.Tick) []domain.DateGroup {
	byDate := make(map[time.Time]*domain.DateGroup)
	var dates []time.Time

	for _, t := range ticks {
		if !t.HasDate() {
			continue
		}
		g, ok := byDate[t.Date]
		if !ok {
			g = &domain.DateGroup{Date: t.Date}
			byDate[t.Date] = g
			dates = append(dates, t.Date)
		}
		g.Total++
		if t.IsCE {
			g.Ticks = append(g.Ticks, t)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	groups := make([]domain.DateGroup, 0, len(dates))
	for _, d := range dates {
		g := byDate[d]
		sort.SliceStable(g.Ticks, func(i, j int) bool { return g.Ticks[i].Time < g.Ticks[j].Time })
		groups = append(groups, *g)
	}
	return groups
}

// BuildSession concatenates anchor slices and orders the result by
// (date, time). Equal keys keep their slice order.
func BuildSession(slices []domain.AnchorSlice) []domain.Tick {
	n := 0
	for _, s := range slices {
		n += len(s.Ticks)
	}
	session := make([]domain.Tick, 0, n)
	for _, s := range slices {
		session = append(session, s.Ticks...)
	}
	sort.SliceStable(session, func(i, j int) bool { return session[i].Before(session[j]) })
	return session
}
