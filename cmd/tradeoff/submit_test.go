package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Tradeoff/internal/api"
	"github.com/MikeSquared-Agency/Tradeoff/internal/config"
	"github.com/MikeSquared-Agency/Tradeoff/internal/metrics"
	"github.com/MikeSquared-Agency/Tradeoff/internal/simulator"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

func newSubmitServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := simulator.New(store.NewMemoryStore(), nil, metrics.New(prometheus.NewRegistry()), config.Default(), logger)
	srv := httptest.NewServer(api.NewRouter(svc, "", 0, logger))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitCommand(t *testing.T) {
	srv := newSubmitServer(t)

	out, err := runCLI(t, "submit", "--server", srv.URL, "--case", beerwiserPath)
	require.NoError(t, err)
	var rec store.CaseRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Beerwiser", rec.Name)
	assert.Equal(t, store.StatusBuilt, rec.Status)

	out, err = runCLI(t, "submit", "--server", srv.URL, "--case", beerwiserPath, "--evaluate")
	require.NoError(t, err)
	var resp api.EvaluateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, store.StatusAppreciated, resp.Status)
	assert.Equal(t, "Focus on training", resp.Results["Pessimistic"].HighestWeightedOption)
}

func TestSubmitCommand_Errors(t *testing.T) {
	_, err := runCLI(t, "submit", "--server", "http://127.0.0.1:1", "--case", "missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidCase, exitCode(err))

	_, err = runCLI(t, "submit", "--server", "http://127.0.0.1:1", "--case", beerwiserPath)
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCode(err))
}
