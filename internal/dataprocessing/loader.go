package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "bnfcli/internal/errors"
	"bnfcli/pkg/contracts/domain"
)

// Required input columns.
const (
	ColTicker = "Ticker"
	ColClose  = "Close"
	ColTime   = "Time"
)

// Dataset is the validated content of one input source.
type Dataset struct {
	Ticks []domain.Tick
	// Undated counts rows whose ticker carried no valid date.
	Undated  int
	Skipped  int
	Warnings []domain.Warning
}

// Loader turns tabular rows into ticks.
type Loader struct {
	parser     *TickerDateParser
	strictTime bool
	logger     *slog.Logger
}

// NewLoader creates a loader. With strictTime false, rows with a malformed
// Time cell are skipped instead of failing the load.
func NewLoader(rules Rules, strictTime bool, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		parser:     NewTickerDateParser(rules.TickerPrefix, rules.CESuffix),
		strictTime: strictTime,
		logger:     logger.With(slog.String("component", "loader")),
	}
}

// LoadCSV reads a CSV stream. A UTF-8 or UTF-16 byte order mark is honored
// and stripped.
func (l *Loader) LoadCSV(r io.Reader) (*Dataset, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewSchemaError([]string{ColTicker, ColClose, ColTime})
	}
	return l.FromRecords(records[0], records[1:])
}

// LoadXLSX reads the first sheet of an Excel workbook.
func (l *Loader) LoadXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaError([]string{ColTicker, ColClose, ColTime})
	}

	l.logger.Debug("workbook opened", slog.String("sheet", sheets[0]), slog.Int("rows", len(rows)))
	return l.FromRecords(rows[0], rows[1:])
}

// FromRecords validates the header and converts each data row.
func (l *Loader) FromRecords(header []string, rows [][]string) (*Dataset, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range []string{ColTicker, ColClose, ColTime} {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(missing)
	}

	ds := &Dataset{Ticks: make([]domain.Tick, 0, len(rows))}
	var firstUndated string

	for i, rec := range rows {
		rowNum := i + 1
		tickerCell := strings.TrimSpace(cell(rec, idx[ColTicker]))
		closeCell := strings.TrimSpace(cell(rec, idx[ColClose]))
		timeCell := strings.TrimSpace(cell(rec, idx[ColTime]))

		if tickerCell == "" && closeCell == "" && timeCell == "" {
			continue
		}

		tod, err := domain.ParseTimeOfDay(timeCell)
		if err != nil {
			malformed := apperrors.NewMalformedTimeError(rowNum, timeCell)
			if l.strictTime {
				return nil, malformed
			}
			ds.Skipped++
			ds.Warnings = append(ds.Warnings, domain.Warning{
				Type:    string(apperrors.ErrTypeMalformedTime),
				Message: malformed.Message,
			})
			l.logger.Warn("skipping row with malformed time",
				slog.Int("row", rowNum), slog.String("value", timeCell))
			continue
		}

		closeVal, err := decimal.NewFromString(closeCell)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid Close %q", rowNum, closeCell), err).
				WithContext("row", rowNum)
		}

		tick := domain.Tick{
			Row:     rowNum,
			Ticker:  tickerCell,
			Close:   closeVal,
			Time:    tod,
			RawTime: timeCell,
			IsCE:    l.parser.IsCE(tickerCell),
		}
		if d, err := l.parser.Parse(tickerCell); err == nil {
			tick.Date = d
		} else {
			ds.Undated++
			if firstUndated == "" {
				firstUndated = tickerCell
			}
			l.logger.Debug("ticker without date", slog.Int("row", rowNum), slog.String("error", err.Error()))
		}
		ds.Ticks = append(ds.Ticks, tick)
	}

	if ds.Undated > 0 {
		ds.Warnings = append(ds.Warnings, domain.Warning{
			Type:    string(apperrors.ErrTypeDateParse),
			Message: fmt.Sprintf("%d rows without a valid ticker date (first: %q)", ds.Undated, firstUndated),
		})
		l.logger.Warn("rows without ticker date",
			slog.Int("count", ds.Undated), slog.String("first_ticker", firstUndated))
	}

	l.logger.Info("dataset loaded",
		slog.Int("rows", len(ds.Ticks)),
		slog.Int("undated", ds.Undated),
		slog.Int("skipped", ds.Skipped))
	return ds, nil
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
