package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bnfcli/internal/errors"
	"bnfcli/internal/shared/testutil"
	"bnfcli/pkg/contracts/domain"
)

func TestProcessor_Run_Session(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	p := NewProcessor(DefaultRules(), WithLogger(logger))

	res, err := p.Run(context.Background(), ReaderSource{
		Label:  "session.csv",
		Reader: strings.NewReader(testutil.SessionCSV),
	})
	require.NoError(t, err)

	assert.Equal(t, "session.csv", res.Source)
	assert.NotEmpty(t, res.RunID)
	requireDecEqual(t, testutil.SessionTotal, res.TotalDifference)
	assert.Equal(t, 1, res.Pairs)
	assert.Equal(t, 2, res.SeedIndex)
	require.Len(t, res.Rows, 7)

	require.Len(t, res.Anchors, 4)
	assert.Equal(t, "2024-01-15", res.Anchors[0].DateString)
	require.NotNil(t, res.Anchors[0].Anchor)
	requireDecEqual(t, "198", res.Anchors[0].Anchor.Close)
	assert.Equal(t, 4, res.Anchors[0].SliceLength)
	assert.Equal(t, 6, res.Anchors[0].Rows)
	assert.Equal(t, 5, res.Anchors[0].CERows)

	requireDecEqual(t, "150", res.Anchors[1].Anchor.Close)
	assert.Equal(t, domain.SkipNoCERows, res.Anchors[2].Skipped)
	assert.Equal(t, domain.SkipNoAnchor, res.Anchors[3].Skipped)
	assert.Nil(t, res.Anchors[3].Anchor)

	var types []string
	for _, w := range res.Warnings {
		types = append(types, w.Type)
	}
	assert.Equal(t, []string{"DATE_PARSE", "NO_ANCHOR"}, types)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "anchor selected")
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "no anchor candidate for date")
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "no CE rows for date")
	testutil.AssertNoErrors(t, logs)
}

func TestProcessor_Run_NoSeedWarning(t *testing.T) {
	input := "Ticker,Close,Time\n" +
		"BANKNIFTY15JAN2447000CE.NFO,198,09:15:30\n" +
		"BANKNIFTY15JAN2447000CE.NFO,240,09:30:00\n"

	p := NewProcessor(DefaultRules(), WithLogger(testutil.DiscardLogger()))
	res, err := p.Run(context.Background(), ReaderSource{Label: "x", Reader: strings.NewReader(input)})
	require.NoError(t, err)

	assert.Equal(t, -1, res.SeedIndex)
	assert.True(t, res.TotalDifference.IsZero())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, string(apperrors.ErrTypeNoSeed), res.Warnings[0].Type)
}

func TestProcessor_Run_FileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ticks.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.SessionCSV), 0644))

	p := NewProcessor(DefaultRules(), WithLogger(testutil.DiscardLogger()))
	res, err := p.Run(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	requireDecEqual(t, testutil.SessionTotal, res.TotalDifference)

	_, err = p.Run(context.Background(), FileSource{Path: filepath.Join(dir, "absent.csv")})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))
}

func TestProcessor_Run_FatalErrors(t *testing.T) {
	p := NewProcessor(DefaultRules(), WithLogger(testutil.DiscardLogger()))

	_, err := p.Run(context.Background(), ReaderSource{Label: "x", Reader: strings.NewReader(testutil.MissingCloseCSV)})
	assert.True(t, errors.Is(err, apperrors.ErrSchema))

	bad := "Ticker,Close,Time\nBANKNIFTY15JAN2447000CE.NFO,198,3:15\n"
	_, err = p.Run(context.Background(), ReaderSource{Label: "x", Reader: strings.NewReader(bad)})
	assert.True(t, errors.Is(err, apperrors.ErrMalformedTime))

	lenient := NewProcessor(DefaultRules(), WithStrictTime(false), WithLogger(testutil.DiscardLogger()))
	res, err := lenient.Run(context.Background(), ReaderSource{Label: "x", Reader: strings.NewReader(bad)})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestProcessor_Run_TickSource(t *testing.T) {
	p := NewProcessor(DefaultRules(), WithLogger(testutil.DiscardLogger()))

	ticks := []domain.Tick{
		ce("16JAN24", "09:15:40", "150"),
		ce("15JAN24", "09:15:30", "198"),
		ce("15JAN24", "09:31:00", "260"),
		ce("15JAN24", "09:32:00", "255"),
		ce("15JAN24", "09:33:00", "270"),
	}
	res, err := p.Run(context.Background(), TickSource{Label: "memory", Ticks: ticks})
	require.NoError(t, err)

	require.Len(t, res.Rows, 5)
	assert.Equal(t, "2024-01-15", res.Rows[0].DateString())
	assert.Equal(t, "2024-01-16", res.Rows[4].DateString())
	requireDecEqual(t, "-15", res.TotalDifference)
}

func TestProcessor_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(DefaultRules(), WithLogger(testutil.DiscardLogger()))
	_, err := p.Run(ctx, ReaderSource{Label: "x", Reader: strings.NewReader(testutil.SessionCSV)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRulesFromConfig(t *testing.T) {
	cfgRules, err := RulesFromConfig(defaultStrategy())
	require.NoError(t, err)

	want := DefaultRules()
	assert.Equal(t, want.AnchorStart, cfgRules.AnchorStart)
	assert.Equal(t, want.ExitWindowEnd, cfgRules.ExitWindowEnd)
	assert.True(t, want.SeedFloor.Equal(cfgRules.SeedFloor))
	assert.True(t, want.AnchorCeiling.Equal(cfgRules.AnchorCeiling))
	assert.Equal(t, want.PairingSentinel, cfgRules.PairingSentinel)

	bad := defaultStrategy()
	bad.SeedStart = "9:30"
	_, err = RulesFromConfig(bad)
	assert.Error(t, err)
}
