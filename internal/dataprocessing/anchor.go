package dataprocessing

import (
	"github.com/shopspring/decimal"

	"bnfcli/internal/errors"
	"bnfcli/pkg/contracts/domain"
)

// SelectAnchor finds the CE row in the morning window whose Close is below
// the ceiling and nearest to it, then returns the group's rows from that
// row to the end of the date. Ties go to the earliest row.
func SelectAnchor(group domain.DateGroup, rules Rules) (domain.AnchorSlice, error) {
	best := -1
	var bestDist decimal.Decimal
	for i, t := range group.Ticks {
		if t.Time < rules.AnchorStart || t.Time > rules.AnchorEnd {
			continue
		}
		if !t.Close.LessThan(rules.AnchorCeiling) {
			continue
		}
		d := rules.AnchorCeiling.Sub(t.Close).Abs()
		if best < 0 || d.LessThan(bestDist) {
			best, bestDist = i, d
		}
	}

	if best < 0 {
		return domain.AnchorSlice{}, errors.NewNoAnchorError(group.Date.Format(domain.DateLayout))
	}

	return domain.AnchorSlice{
		Date:   group.Date,
		Anchor: group.Ticks[best],
		Ticks:  group.Ticks[best:],
	}, nil
}
