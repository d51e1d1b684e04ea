package dataprocessing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bnfcli/internal/errors"
	"bnfcli/pkg/contracts/domain"
)

func TestGroupByDate(t *testing.T) {
	pe := ce("16JAN24", "09:15:00", "120")
	pe.IsCE = false
	undated := ce("15JAN24", "09:15:00", "100")
	undated.Date = time.Time{}

	ticks := []domain.Tick{
		ce("16JAN24", "10:00:00", "300"),
		ce("15JAN24", "09:20:00", "210"),
		pe,
		ce("15JAN24", "09:15:10", "195"),
		undated,
		ce("15JAN24", "09:20:00", "211"),
	}

	groups := GroupByDate(ticks)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-01-15", groups[0].Date.Format(domain.DateLayout))
	require.Len(t, groups[0].Ticks, 3)
	assert.Equal(t, domain.Clock(9, 15, 10), groups[0].Ticks[0].Time)
	requireDecEqual(t, "210", groups[0].Ticks[1].Close)
	requireDecEqual(t, "211", groups[0].Ticks[2].Close)
	assert.Equal(t, 3, groups[0].Total)

	assert.Equal(t, "2024-01-16", groups[1].Date.Format(domain.DateLayout))
	assert.Len(t, groups[1].Ticks, 1)
	assert.Equal(t, 2, groups[1].Total, "PE rows count toward the date total")
}

func TestGroupByDate_NoCERows(t *testing.T) {
	pe := ce("17JAN24", "09:15:10", "120")
	pe.IsCE = false

	groups := GroupByDate([]domain.Tick{pe})
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Ticks)
	assert.Equal(t, 1, groups[0].Total)
}

func TestSelectAnchor(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name       string
		ticks      []domain.Tick
		wantClose  string
		wantLength int
	}{
		{
			name: "nearest below ceiling",
			ticks: []domain.Tick{
				ce("15JAN24", "09:15:10", "195"),
				ce("15JAN24", "09:15:30", "198"),
				ce("15JAN24", "09:40:00", "260"),
			},
			wantClose:  "198",
			wantLength: 2,
		},
		{
			name: "ceiling itself excluded",
			ticks: []domain.Tick{
				ce("15JAN24", "09:15:05", "200"),
				ce("15JAN24", "09:15:20", "199.5"),
			},
			wantClose:  "199.5",
			wantLength: 1,
		},
		{
			name: "window bounds",
			ticks: []domain.Tick{
				ce("15JAN24", "09:14:59", "199"),
				ce("15JAN24", "09:15:59", "150"),
				ce("15JAN24", "09:16:00", "199.9"),
			},
			wantClose:  "150",
			wantLength: 2,
		},
		{
			name: "tie keeps first",
			ticks: []domain.Tick{
				ce("15JAN24", "09:15:10", "190"),
				ce("15JAN24", "09:15:20", "190"),
				ce("15JAN24", "09:15:30", "120"),
			},
			wantClose:  "190",
			wantLength: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := GroupByDate(tt.ticks)[0]
			slice, err := SelectAnchor(group, rules)
			require.NoError(t, err)

			requireDecEqual(t, tt.wantClose, slice.Anchor.Close)
			assert.Len(t, slice.Ticks, tt.wantLength)
			assert.Equal(t, slice.Anchor, slice.Ticks[0])
			assert.True(t, slice.Ticks[0].Time >= rules.AnchorStart && slice.Ticks[0].Time <= rules.AnchorEnd)
		})
	}
}

func TestSelectAnchor_NearestBelowCeiling(t *testing.T) {
	group := GroupByDate([]domain.Tick{
		ce("15JAN24", "09:15:30", "198"),
		ce("15JAN24", "09:15:10", "195"),
	})[0]

	slice, err := SelectAnchor(group, DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, domain.Clock(9, 15, 30), slice.Anchor.Time)
}

func TestSelectAnchor_NoCandidate(t *testing.T) {
	group := GroupByDate([]domain.Tick{
		ce("18JAN24", "09:15:10", "205"),
		ce("18JAN24", "09:20:00", "190"),
	})[0]

	_, err := SelectAnchor(group, DefaultRules())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoAnchor))
}

func TestBuildSession_OrdersByDateThenTime(t *testing.T) {
	later := domain.AnchorSlice{Ticks: []domain.Tick{
		ce("16JAN24", "09:15:40", "150"),
		ce("16JAN24", "09:20:00", "300"),
	}}
	earlier := domain.AnchorSlice{Ticks: []domain.Tick{
		ce("15JAN24", "09:15:30", "198"),
		ce("15JAN24", "10:00:00", "280"),
	}}

	session := BuildSession([]domain.AnchorSlice{later, earlier})
	require.Len(t, session, 4)

	var got []string
	for _, tk := range session {
		got = append(got, tk.DateString()+" "+tk.Time.String())
	}
	assert.Equal(t, []string{
		"2024-01-15 09:15:30",
		"2024-01-15 10:00:00",
		"2024-01-16 09:15:40",
		"2024-01-16 09:20:00",
	}, got)
}
