package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bnfcli/internal/errors"
	"bnfcli/internal/shared/testutil"
)

func TestValidateInput(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ticks.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testutil.SessionCSV), 0644))
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0644))
	lockPath := filepath.Join(dir, "~$ticks.xlsx")
	require.NoError(t, os.WriteFile(lockPath, []byte("x"), 0644))

	v := NewFileValidator(testutil.DiscardLogger())

	tests := []struct {
		name     string
		path     string
		wantKind InputKind
		wantErr  apperrors.ErrorType
	}{
		{"csv file", csvPath, InputFile, ""},
		{"directory", dir, InputDirectory, ""},
		{"missing", filepath.Join(dir, "missing.csv"), 0, apperrors.ErrTypeNotFound},
		{"wrong extension", txtPath, InputFile, apperrors.ErrTypeValidation},
		{"excel lock file", lockPath, InputFile, apperrors.ErrTypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := v.ValidateInput(tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, apperrors.TypeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))
}

func TestValidateOutputDirectory_BlockedByFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewFileValidator(testutil.DiscardLogger()).ValidateOutputDirectory(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}
