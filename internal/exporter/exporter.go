package exporter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"bnfcli/internal/config"
	apperrors "bnfcli/internal/errors"
	"bnfcli/internal/infrastructure"
	"bnfcli/pkg/contracts/domain"
)

// Exporter renders results in one of the supported formats.
type Exporter struct {
	paths  *config.Paths
	logger *slog.Logger
	bom    bool
}

// NewExporter creates an exporter. Relative output paths resolve against
// paths.ReportsDir; a nil paths leaves them relative to the working directory.
func NewExporter(paths *config.Paths, bomPrefix bool, logger *slog.Logger) *Exporter {
	return &Exporter{
		paths:  paths,
		logger: infrastructure.WithComponent(logger, "exporter"),
		bom:    bomPrefix,
	}
}

// Render writes res to w in format.
func (e *Exporter) Render(w io.Writer, format string, res *domain.Result) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, res)
	case FormatCSV:
		return WriteResultCSV(w, res, e.bom)
	case FormatXLSX:
		return WriteXLSX(w, res)
	case FormatJSON:
		return WriteJSON(w, res, true)
	}
	return apperrors.NewAppValidationError(fmt.Sprintf("unsupported output format %q", format))
}

// WriteFile renders res into path and returns the resolved file path.
func (e *Exporter) WriteFile(path, format string, res *domain.Result) (string, error) {
	path = e.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", apperrors.NewStorageError("failed to create output directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewStorageError("failed to create output file", err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	if err := e.Render(buf, format, res); err != nil {
		return "", err
	}
	if err := buf.Flush(); err != nil {
		return "", apperrors.NewStorageError("failed to write output file", err)
	}

	e.logger.Info("report written",
		slog.String("path", path),
		slog.String("format", format),
		slog.Int("rows", len(res.Rows)))
	return path, nil
}

func (e *Exporter) resolvePath(path string) string {
	if filepath.IsAbs(path) || e.paths == nil {
		return path
	}
	return e.paths.GetReportPath(path)
}
