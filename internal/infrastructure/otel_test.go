package infrastructure

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnfcli/internal/config"
)

func newTestProviders(t *testing.T, exporter string, out *bytes.Buffer) *OTelProviders {
	t.Helper()
	var logBuf bytes.Buffer
	p, err := InitializeOTel(config.TelemetryConfig{ServiceName: "bnfcli-test", TraceExporter: exporter}, out,
		NewLogger(config.LoggingConfig{Level: "error"}, &logBuf))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestInitializeOTel_MetricsExposed(t *testing.T) {
	p := newTestProviders(t, "none", nil)

	m, err := NewPipelineMetrics(p.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	m.TicksLoaded(ctx, 12)
	m.DateSkipped(ctx, "no_anchor")
	m.AnchorSelected(ctx)
	m.RunFinished(ctx, "ok", 2, 15.5, 0.01)

	rec := httptest.NewRecorder()
	p.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "bnf_ticks_loaded_total")
	assert.Contains(t, body, `reason="no_anchor"`)
	assert.Contains(t, body, "bnf_pairs_total")
}

func TestWriteMetricsFile(t *testing.T) {
	p := newTestProviders(t, "none", nil)
	m, err := NewPipelineMetrics(p.Meter)
	require.NoError(t, err)
	m.TicksLoaded(context.Background(), 3)

	path := filepath.Join(t.TempDir(), "bnf.prom")
	require.NoError(t, p.WriteMetricsFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bnf_ticks_loaded_total")
}

func TestInitializeOTel_StdoutTraces(t *testing.T) {
	var out bytes.Buffer
	p := newTestProviders(t, "stdout", &out)

	_, span := p.Tracer.Start(context.Background(), "unit")
	span.End()
	require.NoError(t, p.TracerProvider.ForceFlush(context.Background()))

	assert.Contains(t, out.String(), `"Name": "unit"`)
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	_, err := InitializeOTel(config.TelemetryConfig{ServiceName: "x", TraceExporter: "zipkin"}, nil, nil)
	assert.Error(t, err)
}

func TestNewPipelineMetrics_NilMeter(t *testing.T) {
	m, err := NewPipelineMetrics(nil)
	require.NoError(t, err)
	m.RowsSkipped(context.Background(), 1)
}
