package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MikeSquared-Agency/Tradeoff/internal/config"
	"github.com/MikeSquared-Agency/Tradeoff/internal/metrics"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model/modeltest"
	"github.com/MikeSquared-Agency/Tradeoff/internal/simulator"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

// MockStore implements store.Store interface for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateCase(ctx context.Context, rec *store.CaseRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStore) GetCase(ctx context.Context, id uuid.UUID) (*store.CaseRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.CaseRecord), args.Error(1)
}

func (m *MockStore) ListCases(ctx context.Context, filter store.CaseFilter) ([]*store.CaseRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.CaseRecord), args.Error(1)
}

func (m *MockStore) UpdateCase(ctx context.Context, rec *store.CaseRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStore) DeleteCase(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) CreateCaseEvent(ctx context.Context, event *store.CaseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStore) GetCaseEvents(ctx context.Context, caseID uuid.UUID) ([]*store.CaseEvent, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.CaseEvent), args.Error(1)
}

func (m *MockStore) GetStats(ctx context.Context) (*store.CaseStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.CaseStats), args.Error(1)
}

func (m *MockStore) Close() error { return nil }

func setupMockRouter(t *testing.T, s store.Store) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := simulator.New(s, nil, metrics.New(prometheus.NewRegistry()), config.Default(), logger)
	return NewRouter(svc, "test-token", 0, logger)
}

func TestStoreFailuresReturn500(t *testing.T) {
	mockStore := new(MockStore)
	dbErr := errors.New("connection refused")
	id := uuid.New()

	mockStore.On("CreateCase", mock.Anything, mock.Anything).Return(dbErr)
	mockStore.On("GetCase", mock.Anything, id).Return(nil, dbErr)
	mockStore.On("ListCases", mock.Anything, mock.Anything).Return(nil, dbErr)
	mockStore.On("GetStats", mock.Anything).Return(nil, dbErr)
	router := setupMockRouter(t, mockStore)

	w := do(t, router, "POST", "/api/v1/cases", modeltest.Beerwiser())
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, router, "GET", "/api/v1/cases/"+id.String(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, router, "GET", "/api/v1/cases", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, router, "GET", "/api/v1/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	mockStore.AssertExpectations(t)
}

func TestEvaluateStoresResults(t *testing.T) {
	mockStore := new(MockStore)
	id := uuid.New()
	rec := &store.CaseRecord{ID: id, Name: "Beerwiser", Status: store.StatusBuilt, Case: modeltest.Beerwiser()}

	mockStore.On("GetCase", mock.Anything, id).Return(rec, nil)
	mockStore.On("UpdateCase", mock.Anything, mock.MatchedBy(func(r *store.CaseRecord) bool {
		return r.ID == id && r.Status == store.StatusAppreciated && r.Results != nil
	})).Return(nil)
	mockStore.On("CreateCaseEvent", mock.Anything, mock.MatchedBy(func(e *store.CaseEvent) bool {
		return e.CaseID == id && e.Event == "evaluated"
	})).Return(nil)
	router := setupMockRouter(t, mockStore)

	w := do(t, router, "POST", "/api/v1/cases/"+id.String()+"/evaluate", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	mockStore.AssertExpectations(t)
}
