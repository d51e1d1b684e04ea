package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnfcli/internal/config"
	"bnfcli/internal/shared/testutil"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false

	a, err := NewApplication(cfg, testutil.DiscardLogger())
	require.NoError(t, err)
	return a
}

func TestApplication_AnalyzeAndMetrics(t *testing.T) {
	a := newTestApp(t)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(testutil.SessionCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total_difference":"`+testutil.SessionTotal+`"`)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bnf_runs_total")
	assert.Contains(t, rec.Body.String(), "bnf_http_requests_total")
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	a := newTestApp(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/api/health", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewApplication_InvalidStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Strategy.AnchorCeiling = "not-a-number"

	_, err := NewApplication(cfg, testutil.DiscardLogger())
	require.Error(t, err)
}
