package infrastructure

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// PipelineMetrics are the counters recorded by one labeling run.
type PipelineMetrics struct {
	ticksLoaded     metric.Int64Counter
	rowsSkipped     metric.Int64Counter
	datesSkipped    metric.Int64Counter
	anchorsSelected metric.Int64Counter
	pairs           metric.Int64Counter
	runs            metric.Int64Counter
	totalDifference metric.Float64Histogram
	runDuration     metric.Float64Histogram
}

// NewPipelineMetrics registers the pipeline instruments on meter.
// A nil meter yields no-op instruments.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(InstrumentationName)
	}

	var (
		m   PipelineMetrics
		err error
	)
	if m.ticksLoaded, err = meter.Int64Counter("bnf_ticks_loaded_total",
		metric.WithDescription("Rows loaded from input datasets")); err != nil {
		return nil, err
	}
	if m.rowsSkipped, err = meter.Int64Counter("bnf_rows_skipped_total",
		metric.WithDescription("Rows dropped by the loader in lenient mode")); err != nil {
		return nil, err
	}
	if m.datesSkipped, err = meter.Int64Counter("bnf_dates_skipped_total",
		metric.WithDescription("Trading dates that contributed no anchor slice")); err != nil {
		return nil, err
	}
	if m.anchorsSelected, err = meter.Int64Counter("bnf_anchors_selected_total",
		metric.WithDescription("Trading dates with a selected anchor row")); err != nil {
		return nil, err
	}
	if m.pairs, err = meter.Int64Counter("bnf_pairs_total",
		metric.WithDescription("Entry/exit pairs realized by the labeler")); err != nil {
		return nil, err
	}
	if m.runs, err = meter.Int64Counter("bnf_runs_total",
		metric.WithDescription("Labeling runs by outcome")); err != nil {
		return nil, err
	}
	if m.totalDifference, err = meter.Float64Histogram("bnf_total_difference",
		metric.WithDescription("Total paired difference per run")); err != nil {
		return nil, err
	}
	if m.runDuration, err = meter.Float64Histogram("bnf_run_duration_seconds",
		metric.WithDescription("Labeling run duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *PipelineMetrics) TicksLoaded(ctx context.Context, n int) {
	m.ticksLoaded.Add(ctx, int64(n))
}

func (m *PipelineMetrics) RowsSkipped(ctx context.Context, n int) {
	m.rowsSkipped.Add(ctx, int64(n))
}

func (m *PipelineMetrics) DateSkipped(ctx context.Context, reason string) {
	m.datesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *PipelineMetrics) AnchorSelected(ctx context.Context) {
	m.anchorsSelected.Add(ctx, 1)
}

// RunFinished records the outcome and summary of a run.
func (m *PipelineMetrics) RunFinished(ctx context.Context, outcome string, pairs int, total float64, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.runs.Add(ctx, 1, attrs)
	m.pairs.Add(ctx, int64(pairs))
	if outcome == "ok" {
		m.totalDifference.Record(ctx, total)
	}
	m.runDuration.Record(ctx, seconds, attrs)
}
