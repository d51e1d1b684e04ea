package dataprocessing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bnfcli/internal/config"
	"bnfcli/pkg/contracts/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

// ce builds a dated CE tick.
func ce(day, hhmmss, close string) domain.Tick {
	return domain.Tick{
		Ticker:  "BANKNIFTY" + day + "47000CE.NFO",
		Close:   dec(close),
		Time:    domain.MustParseTimeOfDay(hhmmss),
		RawTime: hhmmss,
		Date:    date(dayToISO(day)),
		IsCE:    true,
	}
}

// dayToISO converts 15JAN24 to 2024-01-15. Month names parse case-insensitively.
func dayToISO(day string) string {
	d, err := time.Parse("02Jan06", day)
	if err != nil {
		panic(err)
	}
	return d.Format(domain.DateLayout)
}

func requireDecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func requireNullDec(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	if want == "" {
		require.False(t, got.Valid, "want null, got %s", got.Decimal)
		return
	}
	require.True(t, got.Valid, "want %s, got null", want)
	requireDecEqual(t, want, got.Decimal)
}

func defaultStrategy() config.StrategyConfig {
	return config.Default().Strategy
}
