package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "bnfcli/internal/errors"
)

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// TickerDateParser extracts the expiry date embedded in option symbols such
// as BANKNIFTY15JAN24XXXXXCE.NFO.
type TickerDateParser struct {
	pattern *regexp.Regexp
	suffix  string
}

// NewTickerDateParser builds a parser for symbols starting with prefix and
// classifying CE rows by suffix.
func NewTickerDateParser(prefix, suffix string) *TickerDateParser {
	return &TickerDateParser{
		pattern: regexp.MustCompile(regexp.QuoteMeta(prefix) +
			`(\d{2})(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)(\d{2})`),
		suffix: suffix,
	}
}

// Parse returns the date at midnight UTC. The pattern may occur anywhere in
// the ticker; the first match wins.
func (p *TickerDateParser) Parse(ticker string) (time.Time, error) {
	m := p.pattern.FindStringSubmatch(ticker)
	if m == nil {
		return time.Time{}, apperrors.NewDateParseError(ticker, fmt.Errorf("no date match"))
	}

	day, _ := strconv.Atoi(m[1])
	month := monthAbbrev[m[2]]
	yy, _ := strconv.Atoi(m[3])
	year := 2000 + yy

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month || d.Year() != year {
		return time.Time{}, apperrors.NewDateParseError(ticker,
			fmt.Errorf("invalid calendar date %s%s%s", m[1], m[2], m[3]))
	}
	return d, nil
}

// IsCE reports whether the ticker is a call option row.
func (p *TickerDateParser) IsCE(ticker string) bool {
	return strings.HasSuffix(ticker, p.suffix)
}
