// Package shared holds helpers used across bnfcli packages.
//
// testutil contains slog capture handlers and dataset fixtures for tests.
// Nothing here may depend on domain packages other than pkg/contracts.
package shared
