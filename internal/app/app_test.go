package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmobcli/internal/config"
	"netmobcli/internal/infrastructure"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.GeoDir = filepath.Join(root, "geo")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Server.RateLimit.Enabled = false
	return cfg
}

func newTestApplication(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	app, err := NewApplication(context.Background(), cfg, infrastructure.NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(context.Background()) })
	return app
}

func TestNewApplication(t *testing.T) {
	app := newTestApplication(t, testConfig(t))

	require.NotNil(t, app.Services)
	assert.NotNil(t, app.Services.Matching)
	assert.NotNil(t, app.Services.Traffic)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Metrics)
	assert.DirExists(t, app.Paths.ReportsDir)
	assert.Equal(t, ":0", app.Server.Addr)
}

func TestNewApplication_UnknownStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "mongo"

	_, err := NewApplication(context.Background(), cfg, infrastructure.NewLogger(io.Discard, "error"))
	assert.Error(t, err)
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApplication(t, testConfig(t))

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// prometheus exporter is on by default
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// the geometry tree is empty so matching Paris fails on the tile layer
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/correspondence/Paris", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	app := newTestApplication(t, testConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
