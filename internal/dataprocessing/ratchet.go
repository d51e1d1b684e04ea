package dataprocessing

import (
	"github.com/shopspring/decimal"

	"bnfcli/pkg/contracts/domain"
)

// Labeling is the output of one ratchet run.
type Labeling struct {
	Rows  []domain.AnnotatedRow
	Total decimal.Decimal
	// SeedIndex is -1 when no row qualified as seed.
	SeedIndex int
	Pairs     int
}

// Seeded reports whether a seed row was found.
func (l Labeling) Seeded() bool { return l.SeedIndex >= 0 }

type ratchetState int

const (
	awaitingFirstUpdate ratchetState = iota
	tracking
)

// RatchetLabeler applies the trailing target algorithm to an ordered session.
type RatchetLabeler struct {
	rules Rules
}

// NewRatchetLabeler creates a labeler for rules.
func NewRatchetLabeler(rules Rules) *RatchetLabeler {
	return &RatchetLabeler{rules: rules}
}

// Label annotates a copy of session, which must already be ordered by
// (date, time). State carries across date boundaries.
// Without a seed the rows come back unannotated and the total is zero.
func (l *RatchetLabeler) Label(session []domain.Tick) Labeling {
	rows := make([]domain.AnnotatedRow, len(session))
	for i, t := range session {
		rows[i] = domain.AnnotatedRow{Tick: t}
	}

	out := Labeling{Rows: rows, Total: decimal.Zero, SeedIndex: l.findSeed(rows)}
	if !out.Seeded() {
		return out
	}

	l.trackTarget(rows, out.SeedIndex)
	l.markSessionTimes(rows)
	l.reconcile(rows)
	out.Total, out.Pairs = l.pair(rows)
	return out
}

// findSeed returns the first row with Close above the floor, scanning from
// the first row at or after the seed start time.
func (l *RatchetLabeler) findSeed(rows []domain.AnnotatedRow) int {
	start := -1
	for i := range rows {
		if rows[i].Time >= l.rules.SeedStart {
			start = i
			break
		}
	}
	if start < 0 {
		return -1
	}
	for i := start; i < len(rows); i++ {
		if rows[i].Close.GreaterThan(l.rules.SeedFloor) {
			return i
		}
	}
	return -1
}

func (l *RatchetLabeler) trackTarget(rows []domain.AnnotatedRow, seed int) {
	target := rows[seed].Close
	state := awaitingFirstUpdate

	for i := seed; i < len(rows); i++ {
		r := &rows[i]
		if r.Close.GreaterThan(target) {
			if state == awaitingFirstUpdate {
				r.Position = domain.PositionDummy
				state = tracking
			} else {
				r.Position = domain.PositionCut
			}
			r.Loss = decimal.NewNullDecimal(r.Close.Sub(target))
			target = r.Close
		} else if state == awaitingFirstUpdate && i > seed {
			r.Position = domain.PositionDummy
			state = tracking
		}
		r.TargetValue = decimal.NewNullDecimal(target)
	}
}

func (l *RatchetLabeler) markSessionTimes(rows []domain.AnnotatedRow) {
	for i := range rows {
		switch rows[i].Time {
		case l.rules.EntryTime:
			rows[i].Mark = domain.MarkEntry
		case l.rules.ExitTime:
			rows[i].Mark = domain.MarkExit
		}
	}
}

// reconcile converts position marks into entry/exit marks and stops at the
// first row inside the exit window.
func (l *RatchetLabeler) reconcile(rows []domain.AnnotatedRow) {
	for i := range rows {
		r := &rows[i]
		if r.Time >= l.rules.ExitTime && r.Time < l.rules.ExitWindowEnd {
			r.Mark = domain.MarkExit
			return
		}

		switch r.Position {
		case domain.PositionCut:
			r.Mark = domain.MarkExit
			if i+1 < len(rows) {
				next := &rows[i+1]
				if next.Time < l.rules.ExitTime && next.Mark == domain.MarkNone {
					next.Mark = domain.MarkEntry
				}
			}
		case domain.PositionDummy:
			r.Mark = domain.MarkEntry
		}
	}
}

// pair matches each exit with the most recent unmatched entry.
func (l *RatchetLabeler) pair(rows []domain.AnnotatedRow) (decimal.Decimal, int) {
	total := decimal.Zero
	pairs := 0
	var pending *decimal.Decimal

	for i := range rows {
		r := &rows[i]
		if l.rules.PairingSentinel != "" && r.RawTime == l.rules.PairingSentinel {
			break
		}
		switch r.Mark {
		case domain.MarkEntry:
			c := r.Close
			pending = &c
		case domain.MarkExit:
			if pending == nil {
				continue
			}
			diff := pending.Sub(r.Close)
			r.PairDifference = decimal.NewNullDecimal(diff)
			total = total.Add(diff)
			pairs++
			pending = nil
		}
	}
	return total, pairs
}
