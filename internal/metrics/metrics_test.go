package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/texlog/pkg/texlog"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecord(t *testing.T) {
	m := New()
	m.Record("main.log", []texlog.Diagnostic{
		{Level: texlog.LevelError},
		{Level: texlog.LevelWarning},
		{Level: texlog.LevelWarning},
	})

	body := scrape(t, m)
	assert.Contains(t, body, `texlog_diagnostics{level="error",log="main.log"} 1`)
	assert.Contains(t, body, `texlog_diagnostics{level="warning",log="main.log"} 2`)
	assert.Contains(t, body, `texlog_diagnostics{level="typesetting",log="main.log"} 0`)
	assert.Contains(t, body, `texlog_parses_total{log="main.log"} 1`)
	assert.Contains(t, body, `texlog_last_parse_timestamp_seconds{log="main.log"}`)
}

func TestRecordOverwritesLevels(t *testing.T) {
	m := New()
	m.Record("main.log", []texlog.Diagnostic{{Level: texlog.LevelError}})
	m.Record("main.log", nil)

	body := scrape(t, m)
	assert.Contains(t, body, `texlog_diagnostics{level="error",log="main.log"} 0`)
	assert.Contains(t, body, `texlog_parses_total{log="main.log"} 2`)
}

func TestServeStopsWithContext(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
