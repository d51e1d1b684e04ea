package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains the directories the binaries write to.
// All paths are relative to the executable directory, never the working directory.
type Paths struct {
	ExecutableDir string
	ReportsDir    string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return PathsFor(filepath.Dir(exe)), nil
}

// PathsFor lays out the directories under root.
func PathsFor(root string) *Paths {
	return &Paths{
		ExecutableDir: root,
		ReportsDir:    filepath.Join(root, "reports"),
		LogsDir:       filepath.Join(root, "logs"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// ReportName derives a timestamped report file name from the input file,
// e.g. ticks.csv -> ticks_ratchet_20240115_153000.xlsx.
func ReportName(input, ext string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "stdin"
	}
	return fmt.Sprintf("%s_ratchet_%s.%s", base, now.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// ResolveLogPath makes a relative log file path absolute against the paths root.
func (p *Paths) ResolveLogPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ExecutableDir, path)
}
