package dataprocessing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bnfcli/internal/config"
	"bnfcli/pkg/contracts/domain"
)

// Rules holds the fixed thresholds of the strategy in typed form.
type Rules struct {
	TickerPrefix string
	CESuffix     string

	// Anchor window is inclusive on both ends.
	AnchorStart   domain.TimeOfDay
	AnchorEnd     domain.TimeOfDay
	AnchorCeiling decimal.Decimal

	SeedStart domain.TimeOfDay
	SeedFloor decimal.Decimal

	EntryTime domain.TimeOfDay
	ExitTime  domain.TimeOfDay
	// ExitWindowEnd is exclusive.
	ExitWindowEnd domain.TimeOfDay

	// PairingSentinel halts pairing when a row's raw time equals it exactly.
	PairingSentinel string
}

// DefaultRules returns the BANKNIFTY CE thresholds.
func DefaultRules() Rules {
	return Rules{
		TickerPrefix:    "BANKNIFTY",
		CESuffix:        "CE.NFO",
		AnchorStart:     domain.Clock(9, 15, 0),
		AnchorEnd:       domain.Clock(9, 15, 59),
		AnchorCeiling:   decimal.NewFromInt(200),
		SeedStart:       domain.Clock(9, 30, 0),
		SeedFloor:       decimal.NewFromInt(250),
		EntryTime:       domain.Clock(9, 30, 0),
		ExitTime:        domain.Clock(15, 15, 0),
		ExitWindowEnd:   domain.Clock(15, 16, 0),
		PairingSentinel: "3:15",
	}
}

// RulesFromConfig parses the string thresholds of cfg.
func RulesFromConfig(cfg config.StrategyConfig) (Rules, error) {
	r := Rules{
		TickerPrefix:    cfg.TickerPrefix,
		CESuffix:        cfg.CESuffix,
		PairingSentinel: cfg.PairingSentinel,
	}

	times := []struct {
		name  string
		value string
		dst   *domain.TimeOfDay
	}{
		{"anchor_start", cfg.AnchorStart, &r.AnchorStart},
		{"anchor_end", cfg.AnchorEnd, &r.AnchorEnd},
		{"seed_start", cfg.SeedStart, &r.SeedStart},
		{"entry_time", cfg.EntryTime, &r.EntryTime},
		{"exit_time", cfg.ExitTime, &r.ExitTime},
		{"exit_window_end", cfg.ExitWindowEnd, &r.ExitWindowEnd},
	}
	for _, t := range times {
		v, err := domain.ParseTimeOfDay(t.value)
		if err != nil {
			return Rules{}, fmt.Errorf("strategy.%s: %w", t.name, err)
		}
		*t.dst = v
	}

	var err error
	if r.AnchorCeiling, err = decimal.NewFromString(cfg.AnchorCeiling); err != nil {
		return Rules{}, fmt.Errorf("strategy.anchor_ceiling: %w", err)
	}
	if r.SeedFloor, err = decimal.NewFromString(cfg.SeedFloor); err != nil {
		return Rules{}, fmt.Errorf("strategy.seed_floor: %w", err)
	}
	return r, nil
}
