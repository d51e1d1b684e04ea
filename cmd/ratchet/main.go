package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bnfcli/internal/config"
	"bnfcli/internal/dataprocessing"
	apperrors "bnfcli/internal/errors"
	"bnfcli/internal/exporter"
	"bnfcli/internal/files"
	"bnfcli/internal/infrastructure"
	"bnfcli/internal/validation"
	"bnfcli/pkg/contracts"
)

// cliOptions holds the parsed command line.
type cliOptions struct {
	In         string
	Out        string
	Format     string
	Anchors    bool
	Lenient    bool
	ConfigFile string
	Version    bool
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	fs := flag.NewFlagSet("ratchet", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &cliOptions{set: map[string]bool{}}
	fs.StringVar(&opts.In, "in", "", "input CSV/XLSX file or directory of files (stdin when empty or \"-\")")
	fs.StringVar(&opts.Out, "out", "", "output file, or output directory for directory input")
	fs.StringVar(&opts.Format, "format", "", "output format: table, csv, xlsx or json")
	fs.BoolVar(&opts.Anchors, "anchors", false, "print the per-date anchor report")
	fs.BoolVar(&opts.Lenient, "lenient", false, "skip rows with malformed Time values instead of failing")
	fs.StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	fs.BoolVar(&opts.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply overlays explicitly set flags on cfg.
func (o *cliOptions) apply(cfg *config.Config) error {
	if o.set["format"] {
		cfg.Output.Format = o.Format
	}
	if o.set["out"] {
		cfg.Output.Path = o.Out
	}
	if o.set["anchors"] {
		cfg.Output.Anchors = o.Anchors
	}
	if o.set["lenient"] {
		cfg.Loader.StrictTime = !o.Lenient
	}
	return cfg.Validate()
}

func loadConfig(opts *cliOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFrom(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := opts.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if opts.Version {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	paths, err := config.GetPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve paths: %v\n", err)
		os.Exit(1)
	}
	cfg.Logging.FilePath = paths.ResolveLogPath(cfg.Logging.FilePath)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	code := run(context.Background(), runEnv{
		cfg:    cfg,
		in:     opts.In,
		paths:  paths,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	})
	infrastructure.CloseLogFile()
	os.Exit(code)
}

// runEnv carries everything a run needs so tests can drive it directly.
type runEnv struct {
	cfg    *config.Config
	in     string
	paths  *config.Paths
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run labels every input and returns the process exit code.
func run(ctx context.Context, env runEnv) int {
	cfg := env.cfg
	logger := env.logger

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, env.stderr, logger)
	if err != nil {
		fmt.Fprintf(env.stderr, "telemetry: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		fmt.Fprintf(env.stderr, "metrics: %v\n", err)
		return 1
	}

	rules, err := dataprocessing.RulesFromConfig(cfg.Strategy)
	if err != nil {
		fmt.Fprintf(env.stderr, "strategy: %v\n", err)
		return 1
	}

	processor := dataprocessing.NewProcessor(rules,
		dataprocessing.WithStrictTime(cfg.Loader.StrictTime),
		dataprocessing.WithTracer(providers.Tracer),
		dataprocessing.WithMetrics(metrics),
		dataprocessing.WithLogger(logger),
	)

	sources, batch, err := resolveSources(env)
	if err != nil {
		fmt.Fprintf(env.stderr, "input: %v\n", err)
		return 1
	}

	exp := exporter.NewExporter(nil, cfg.Output.BOMPrefix, logger)
	window := exporter.AnchorWindow{
		Ceiling: cfg.Strategy.AnchorCeiling,
		Start:   cfg.Strategy.AnchorStart,
		End:     cfg.Strategy.AnchorEnd,
	}

	code := 0
	for _, src := range sources {
		if err := processOne(ctx, env, processor, exp, window, src, batch); err != nil {
			logger.Error("run failed",
				slog.String("source", src.Name()),
				slog.String("error_type", string(apperrors.TypeOf(err))),
				slog.String("error", err.Error()))
			fmt.Fprintf(env.stderr, "%s: %v\n", src.Name(), err)
			code = 1
		}
	}

	if cfg.Telemetry.MetricsFile != "" {
		if err := providers.WriteMetricsFile(cfg.Telemetry.MetricsFile); err != nil {
			logger.Error("failed to write metrics file",
				slog.String("path", cfg.Telemetry.MetricsFile),
				slog.String("error", err.Error()))
			code = 1
		}
	}
	return code
}

// resolveSources expands the -in argument. batch reports directory input.
func resolveSources(env runEnv) ([]dataprocessing.Source, bool, error) {
	if env.in == "" || env.in == "-" {
		return []dataprocessing.Source{dataprocessing.ReaderSource{
			Label:  "stdin",
			Reader: env.stdin,
			Format: dataprocessing.FormatCSV,
		}}, false, nil
	}

	kind, err := validation.NewFileValidator(env.logger).ValidateInput(env.in)
	if err != nil {
		return nil, false, err
	}
	if kind == validation.InputFile {
		return []dataprocessing.Source{dataprocessing.FileSource{Path: env.in}}, false, nil
	}

	found, err := files.NewDiscovery("").FindTickFiles(env.in)
	if err != nil {
		return nil, true, apperrors.NewStorageError("failed to list input directory", err)
	}
	if len(found) == 0 {
		return nil, true, apperrors.NewNotFoundError(fmt.Sprintf("CSV or XLSX files in %s", env.in))
	}
	env.logger.Info("batch input", slog.String("directory", env.in), slog.Int("files", len(found)))

	sources := make([]dataprocessing.Source, len(found))
	for i, f := range found {
		sources[i] = dataprocessing.FileSource{Path: f.Path}
	}
	return sources, true, nil
}

func processOne(ctx context.Context, env runEnv, p *dataprocessing.Processor, exp *exporter.Exporter,
	window exporter.AnchorWindow, src dataprocessing.Source, batch bool) error {
	res, err := p.Run(ctx, src)
	if err != nil {
		return err
	}

	if batch {
		fmt.Fprintf(env.stdout, "== %s\n", src.Name())
	}
	if env.cfg.Output.Anchors {
		if err := exporter.WriteAnchorReport(env.stdout, res, window); err != nil {
			return err
		}
	}

	format := env.cfg.Output.Format
	target := outputPath(env, src, batch)
	if target == "" {
		if format == exporter.FormatXLSX {
			return apperrors.NewAppValidationError("xlsx output needs a file path")
		}
		return exp.Render(env.stdout, format, res)
	}

	written, err := exp.WriteFile(target, format, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "wrote %s\nTotal Difference: %s\n", written, res.TotalDifference.String())
	return nil
}

// outputPath decides where a result goes. Table output and unset paths
// print to stdout, except xlsx which defaults to the reports directory.
func outputPath(env runEnv, src dataprocessing.Source, batch bool) string {
	format := env.cfg.Output.Format
	out := env.cfg.Output.Path
	name := config.ReportName(src.Name(), exporter.Extension(format), time.Now())

	switch {
	case batch && out != "":
		return filepath.Join(out, name)
	case out != "":
		return out
	case format == exporter.FormatXLSX && env.paths != nil:
		return env.paths.GetReportPath(name)
	case batch && format != exporter.FormatTable && env.paths != nil:
		return env.paths.GetReportPath(name)
	}
	return ""
}
