package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PositionMark records how the ratchet treated a row.
type PositionMark int

const (
	PositionNone PositionMark = iota
	PositionDummy
	PositionCut
)

var positionLabels = map[PositionMark]string{
	PositionNone:  "",
	PositionDummy: "Dummy",
	PositionCut:   "Cut Position",
}

// String returns the table label.
func (p PositionMark) String() string {
	return positionLabels[p]
}

// MarshalJSON encodes the table label.
func (p PositionMark) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a table label.
func (p *PositionMark) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, v := range positionLabels {
		if v == s {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown position mark %q", s)
}

// Mark is the entry/exit label of a row.
type Mark int

const (
	MarkNone Mark = iota
	MarkEntry
	MarkExit
)

// String returns "N" for entry, "C" for exit.
func (m Mark) String() string {
	switch m {
	case MarkEntry:
		return "N"
	case MarkExit:
		return "C"
	}
	return ""
}

// MarshalJSON encodes the single-letter label.
func (m Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a single-letter label.
func (m *Mark) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "":
		*m = MarkNone
	case "N":
		*m = MarkEntry
	case "C":
		*m = MarkExit
	default:
		return fmt.Errorf("unknown mark %q", s)
	}
	return nil
}

// AnnotatedRow is a Tick with the labeler's output columns.
type AnnotatedRow struct {
	Tick
	TargetValue    decimal.NullDecimal `json:"target_value"`
	Position       PositionMark        `json:"position_mark"`
	Mark           Mark                `json:"mark"`
	Loss           decimal.NullDecimal `json:"loss"`
	PairDifference decimal.NullDecimal `json:"pair_difference"`
}
