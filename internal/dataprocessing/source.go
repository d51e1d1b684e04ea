package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "bnfcli/internal/errors"
	"bnfcli/pkg/contracts/domain"
)

// Source supplies a dataset to the processor.
type Source interface {
	Name() string
	Load(ctx context.Context, l *Loader) (*Dataset, error)
}

// Input formats understood by ReaderSource.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// FileSource reads a CSV or XLSX file chosen by extension.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Load(ctx context.Context, l *Loader) (*Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(s.Path)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", s.Path), err)
	}
	defer f.Close()

	format := FormatCSV
	if strings.EqualFold(filepath.Ext(s.Path), ".xlsx") {
		format = FormatXLSX
	}
	return ReaderSource{Label: s.Path, Reader: f, Format: format}.Load(ctx, l)
}

// ReaderSource reads an already open stream.
type ReaderSource struct {
	Label  string
	Reader io.Reader
	Format string
}

func (s ReaderSource) Name() string { return s.Label }

func (s ReaderSource) Load(ctx context.Context, l *Loader) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch s.Format {
	case FormatXLSX:
		return l.LoadXLSX(s.Reader)
	case FormatCSV, "":
		return l.LoadCSV(s.Reader)
	}
	return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported input format %q", s.Format))
}

// TickSource serves ticks built in memory. They bypass the loader, so
// fields like RawTime are taken as given.
type TickSource struct {
	Label string
	Ticks []domain.Tick
}

func (s TickSource) Name() string { return s.Label }

func (s TickSource) Load(ctx context.Context, _ *Loader) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ticks := make([]domain.Tick, len(s.Ticks))
	copy(ticks, s.Ticks)
	return &Dataset{Ticks: ticks}, nil
}
