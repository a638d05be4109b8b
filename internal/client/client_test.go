package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Tradeoff/internal/api"
	"github.com/MikeSquared-Agency/Tradeoff/internal/config"
	"github.com/MikeSquared-Agency/Tradeoff/internal/metrics"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model/modeltest"
	"github.com/MikeSquared-Agency/Tradeoff/internal/optimize"
	"github.com/MikeSquared-Agency/Tradeoff/internal/simulator"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := simulator.New(store.NewMemoryStore(), nil, metrics.New(prometheus.NewRegistry()), config.Default(), logger)
	srv := httptest.NewServer(api.NewRouter(svc, "secret", 0, logger))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_CaseLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := NewHTTPClient(srv.URL, "secret", "client-test")
	ctx := context.Background()

	rec, err := c.CreateCase(ctx, modeltest.Beerwiser())
	require.NoError(t, err)
	assert.Equal(t, store.StatusBuilt, rec.Status)

	eval, err := c.Evaluate(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusAppreciated, eval.Status)
	assert.Equal(t, "Equal spread", eval.Results["Base case"].HighestWeightedOption)

	ranking, err := c.Ranking(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "Focus on training", ranking[0].Option)

	frontier, err := c.Frontier(ctx, rec.ID, "Base case")
	require.NoError(t, err)
	assert.NotEmpty(t, frontier)

	opt, err := c.Optimize(ctx, rec.ID, optimize.Request{Scenario: "Base case", OptionName: "Optimized"})
	require.NoError(t, err)
	assert.Equal(t, []float64{25000, 275000}, opt.Outcome.Values)

	got, err := c.GetCase(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusOptimized, got.Status)
	assert.Len(t, got.Case.Options, 4)

	require.NoError(t, c.DeleteCase(ctx, rec.ID))
	_, err = c.GetCase(ctx, rec.ID)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestHTTPClient_Errors(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	c := NewHTTPClient(srv.URL, "", "")
	rec, err := c.CreateCase(ctx, modeltest.Beerwiser())
	require.NoError(t, err)

	err = c.DeleteCase(ctx, rec.ID)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "DELETE /api/v1/cases/")

	_, err = c.Optimize(ctx, rec.ID, optimize.Request{Scenario: "Base case", OptionName: "Optimized"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	_, err = c.Evaluate(ctx, uuid.New())
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
