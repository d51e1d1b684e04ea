package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SkipReason explains why a date contributed no anchor slice.
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipNoCERows SkipReason = "no_ce_rows"
	SkipNoAnchor SkipReason = "no_anchor"
)

// AnchorReport summarizes anchor selection for one date.
type AnchorReport struct {
	Date        time.Time  `json:"-"`
	DateString  string     `json:"date"`
	Rows        int        `json:"rows"`
	CERows      int        `json:"ce_rows"`
	Anchor      *Tick      `json:"anchor,omitempty"`
	SliceLength int        `json:"slice_length"`
	Skipped     SkipReason `json:"skipped,omitempty"`
}

// Warning is a non-fatal condition raised while processing.
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Result is the output of one labeling run.
type Result struct {
	RunID           string          `json:"run_id"`
	Source          string          `json:"source,omitempty"`
	Rows            []AnnotatedRow  `json:"rows"`
	TotalDifference decimal.Decimal `json:"total_difference"`
	// SeedIndex is the seed row position in Rows, -1 when none was found.
	SeedIndex int            `json:"seed_index"`
	Pairs     int            `json:"pairs"`
	Anchors   []AnchorReport `json:"anchors"`
	Warnings  []Warning      `json:"warnings,omitempty"`
}
