package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"bnfcli/pkg/contracts/domain"
)

// WriteTable prints the annotated session followed by the total difference.
func WriteTable(w io.Writer, res *domain.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(TableColumns, "\t"))
	for _, r := range res.Rows {
		fmt.Fprintln(tw, strings.Join(tableRecord(r), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Total Difference: %s\n", res.TotalDifference.String())
	return err
}

// AnchorWindow describes the anchor rule for report wording.
type AnchorWindow struct {
	Ceiling string
	Start   string
	End     string
}

// WriteAnchorReport prints per-date anchor selection diagnostics followed by
// any run warnings.
func WriteAnchorReport(w io.Writer, res *domain.Result, win AnchorWindow) error {
	for _, a := range res.Anchors {
		var line string
		switch {
		case a.Skipped == domain.SkipNoCERows:
			line = fmt.Sprintf("%s: No CE rows found for the selected date.", a.DateString)
		case a.Skipped == domain.SkipNoAnchor:
			line = fmt.Sprintf("%s: No value less than %s found between %s and %s.",
				a.DateString, win.Ceiling, win.Start, win.End)
		case a.Anchor != nil:
			line = fmt.Sprintf("%s: Nearest value to %s found: %s %s Close %s (%d of %d CE rows kept)",
				a.DateString, win.Ceiling, a.Anchor.Ticker, a.Anchor.Time, a.Anchor.Close, a.SliceLength, a.CERows)
		default:
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for _, warn := range res.Warnings {
		if _, err := fmt.Fprintf(w, "warning [%s]: %s\n", warn.Type, warn.Message); err != nil {
			return err
		}
	}
	return nil
}
