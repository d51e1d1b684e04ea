package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "bnfcli/internal/errors"
	"bnfcli/internal/infrastructure"
	"bnfcli/pkg/contracts/domain"
)

// Processor runs the full pipeline: load, group, anchor, concatenate, label.
type Processor struct {
	rules   Rules
	loader  *Loader
	labeler *RatchetLabeler
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// Option configures a Processor.
type Option func(*processorOptions)

type processorOptions struct {
	strictTime bool
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
	logger     *slog.Logger
}

// WithStrictTime sets the loader's malformed time policy. Default true.
func WithStrictTime(strict bool) Option {
	return func(o *processorOptions) { o.strictTime = strict }
}

// WithTracer records one span per stage.
func WithTracer(t trace.Tracer) Option {
	return func(o *processorOptions) { o.tracer = t }
}

// WithMetrics records pipeline counters.
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(o *processorOptions) { o.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *processorOptions) { o.logger = l }
}

// NewProcessor creates a processor for rules.
func NewProcessor(rules Rules, opts ...Option) *Processor {
	o := processorOptions{strictTime: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	if o.metrics == nil {
		o.metrics, _ = infrastructure.NewPipelineMetrics(nil)
	}

	return &Processor{
		rules:   rules,
		loader:  NewLoader(rules, o.strictTime, o.logger),
		labeler: NewRatchetLabeler(rules),
		tracer:  o.tracer,
		metrics: o.metrics,
		logger:  o.logger.With(slog.String("component", "processor")),
	}
}

// Run loads src and processes it. Fatal dataset errors are returned as
// *errors.AppError; per-date and seed failures become Result warnings.
func (p *Processor) Run(ctx context.Context, src Source) (*domain.Result, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := p.tracer.Start(ctx, "ratchet.run", trace.WithAttributes(attribute.String("source", src.Name())))
	defer span.End()

	started := time.Now()

	ds, err := p.load(ctx, src)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.metrics.RunFinished(ctx, outcome(err), 0, 0, time.Since(started).Seconds())
		p.logger.ErrorContext(ctx, "load failed", slog.String("source", src.Name()), slog.String("error", err.Error()))
		return nil, err
	}

	res, err := p.Process(ctx, ds)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.metrics.RunFinished(ctx, outcome(err), 0, 0, time.Since(started).Seconds())
		return nil, err
	}
	res.Source = src.Name()

	total, _ := res.TotalDifference.Float64()
	p.metrics.RunFinished(ctx, "ok", res.Pairs, total, time.Since(started).Seconds())
	return res, nil
}

func (p *Processor) load(ctx context.Context, src Source) (*Dataset, error) {
	ctx, span := p.tracer.Start(ctx, "ratchet.load")
	defer span.End()

	ds, err := src.Load(ctx, p.loader)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(ds.Ticks)), attribute.Int("undated", ds.Undated))
	p.metrics.TicksLoaded(ctx, len(ds.Ticks))
	if ds.Skipped > 0 {
		p.metrics.RowsSkipped(ctx, ds.Skipped)
	}
	return ds, nil
}

// Process runs the stages after loading.
func (p *Processor) Process(ctx context.Context, ds *Dataset) (*domain.Result, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	res := &domain.Result{
		RunID:     infrastructure.GetTraceID(ctx),
		SeedIndex: -1,
		Warnings:  append([]domain.Warning(nil), ds.Warnings...),
	}

	slices, reports := p.selectAnchors(ctx, GroupByDate(ds.Ticks))
	res.Anchors = reports
	for _, r := range reports {
		if r.Skipped == domain.SkipNoAnchor {
			res.Warnings = append(res.Warnings, domain.Warning{
				Type:    string(apperrors.ErrTypeNoAnchor),
				Message: "no anchor candidate for " + r.DateString,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, span := p.tracer.Start(ctx, "ratchet.label")
	session := BuildSession(slices)
	labeling := p.labeler.Label(session)
	span.SetAttributes(
		attribute.Int("session_rows", len(session)),
		attribute.Int("seed_index", labeling.SeedIndex),
		attribute.Int("pairs", labeling.Pairs),
	)
	span.End()

	res.Rows = labeling.Rows
	res.TotalDifference = labeling.Total
	res.SeedIndex = labeling.SeedIndex
	res.Pairs = labeling.Pairs

	if !labeling.Seeded() {
		noSeed := apperrors.NewNoSeedError()
		res.Warnings = append(res.Warnings, domain.Warning{Type: string(noSeed.Type), Message: noSeed.Message})
		p.logger.WarnContext(ctx, "no seed row found", slog.Int("session_rows", len(session)))
	}

	p.logger.InfoContext(ctx, "labeling complete",
		slog.Int("dates", len(reports)),
		slog.Int("slices", len(slices)),
		slog.Int("session_rows", len(session)),
		slog.Int("pairs", res.Pairs),
		slog.String("total_difference", res.TotalDifference.String()))
	return res, nil
}

func (p *Processor) selectAnchors(ctx context.Context, groups []domain.DateGroup) ([]domain.AnchorSlice, []domain.AnchorReport) {
	ctx, span := p.tracer.Start(ctx, "ratchet.anchor")
	defer span.End()

	slices := make([]domain.AnchorSlice, 0, len(groups))
	reports := make([]domain.AnchorReport, 0, len(groups))

	for _, g := range groups {
		report := domain.AnchorReport{
			Date:       g.Date,
			DateString: g.Date.Format(domain.DateLayout),
			Rows:       g.Total,
			CERows:     len(g.Ticks),
		}

		if len(g.Ticks) == 0 {
			report.Skipped = domain.SkipNoCERows
			p.metrics.DateSkipped(ctx, string(domain.SkipNoCERows))
			p.logger.InfoContext(ctx, "no CE rows for date", slog.String("date", report.DateString))
			reports = append(reports, report)
			continue
		}

		slice, err := SelectAnchor(g, p.rules)
		if err != nil {
			report.Skipped = domain.SkipNoAnchor
			p.metrics.DateSkipped(ctx, string(domain.SkipNoAnchor))
			p.logger.InfoContext(ctx, "no anchor candidate for date",
				slog.String("date", report.DateString),
				slog.String("window", p.rules.AnchorStart.String()+"-"+p.rules.AnchorEnd.String()),
				slog.String("ceiling", p.rules.AnchorCeiling.String()))
			reports = append(reports, report)
			continue
		}

		anchor := slice.Anchor
		report.Anchor = &anchor
		report.SliceLength = len(slice.Ticks)
		p.metrics.AnchorSelected(ctx)
		p.logger.InfoContext(ctx, "anchor selected",
			slog.String("date", report.DateString),
			slog.String("ticker", anchor.Ticker),
			slog.String("time", anchor.Time.String()),
			slog.String("close", anchor.Close.String()),
			slog.Int("slice_rows", report.SliceLength))

		slices = append(slices, slice)
		reports = append(reports, report)
	}

	span.SetAttributes(attribute.Int("dates", len(groups)), attribute.Int("slices", len(slices)))
	return slices, reports
}

func outcome(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	if t := apperrors.TypeOf(err); t != "" {
		return string(t)
	}
	return "error"
}
