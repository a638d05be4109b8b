// Package client talks to a running Tradeoff API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Tradeoff/internal/api"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/optimize"
	"github.com/MikeSquared-Agency/Tradeoff/internal/scoring"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tradeoff %s %s: %d %s", e.Method, e.Path, e.Status, e.Body)
}

type Client interface {
	CreateCase(ctx context.Context, c *model.Case) (*store.CaseRecord, error)
	GetCase(ctx context.Context, id uuid.UUID) (*store.CaseRecord, error)
	Evaluate(ctx context.Context, id uuid.UUID) (*api.EvaluateResponse, error)
	Optimize(ctx context.Context, id uuid.UUID, req optimize.Request) (*api.OptimizeResponse, error)
	Ranking(ctx context.Context, id uuid.UUID) ([]scoring.RankedOption, error)
	DeleteCase(ctx context.Context, id uuid.UUID) error
}

type HTTPClient struct {
	baseURL    string
	token      string
	clientID   string
	httpClient *http.Client
}

// NewHTTPClient builds a client for baseURL. token is only sent as a bearer
// token when set and is needed for admin routes.
func NewHTTPClient(baseURL, token, clientID string) *HTTPClient {
	return &HTTPClient{
		baseURL:  baseURL,
		token:    token,
		clientID: clientID,
		// Optimizer runs can take a while.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.clientID != "" {
		req.Header.Set(api.ClientIDHeader, c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return &Error{Method: method, Path: path, Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func casePath(id uuid.UUID) string {
	return "/api/v1/cases/" + id.String()
}

func (c *HTTPClient) CreateCase(ctx context.Context, cs *model.Case) (*store.CaseRecord, error) {
	var rec store.CaseRecord
	if err := c.doReq(ctx, "POST", "/api/v1/cases", cs, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) GetCase(ctx context.Context, id uuid.UUID) (*store.CaseRecord, error) {
	var rec store.CaseRecord
	if err := c.doReq(ctx, "GET", casePath(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) Evaluate(ctx context.Context, id uuid.UUID) (*api.EvaluateResponse, error) {
	var resp api.EvaluateResponse
	if err := c.doReq(ctx, "POST", casePath(id)+"/evaluate", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Optimize(ctx context.Context, id uuid.UUID, req optimize.Request) (*api.OptimizeResponse, error) {
	var resp api.OptimizeResponse
	if err := c.doReq(ctx, "POST", casePath(id)+"/optimize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Ranking(ctx context.Context, id uuid.UUID) ([]scoring.RankedOption, error) {
	var ranking []scoring.RankedOption
	if err := c.doReq(ctx, "GET", casePath(id)+"/ranking", nil, &ranking); err != nil {
		return nil, err
	}
	return ranking, nil
}

func (c *HTTPClient) Frontier(ctx context.Context, id uuid.UUID, scenario string) ([]scoring.ParetoCandidate, error) {
	var frontier []scoring.ParetoCandidate
	if err := c.doReq(ctx, "GET", casePath(id)+"/scenarios/"+url.PathEscape(scenario)+"/frontier", nil, &frontier); err != nil {
		return nil, err
	}
	return frontier, nil
}

func (c *HTTPClient) DeleteCase(ctx context.Context, id uuid.UUID) error {
	return c.doReq(ctx, "DELETE", casePath(id), nil, nil)
}
