package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// CaseStatus tracks how far a case has progressed through
// build -> evaluate -> appreciate -> optimize.
type CaseStatus string

const (
	StatusBuilt       CaseStatus = "built"
	StatusEvaluated   CaseStatus = "evaluated"
	StatusAppreciated CaseStatus = "appreciated"
	StatusOptimized   CaseStatus = "optimized"
)

type CaseRecord struct {
	ID     uuid.UUID   `json:"case_id"`
	Name   string      `json:"name"`
	Status CaseStatus  `json:"status"`
	Case   *model.Case `json:"case"`

	// Results is nil until the case has been evaluated.
	Results model.Results `json:"results,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers never share a case with the store.
func (r *CaseRecord) Clone() *CaseRecord {
	out := *r
	if r.Case != nil {
		out.Case = r.Case.Clone()
	}
	if r.Results != nil {
		out.Results = r.Results.Clone()
	}
	return &out
}

type CaseEvent struct {
	ID        uuid.UUID              `json:"id"`
	CaseID    uuid.UUID              `json:"case_id"`
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type CaseFilter struct {
	Status *CaseStatus
	Name   string
	Limit  int
}

type CaseStats struct {
	Total       int `json:"total"`
	Built       int `json:"built"`
	Evaluated   int `json:"evaluated"`
	Appreciated int `json:"appreciated"`
	Optimized   int `json:"optimized"`
}

// Store persists cases and their result trees. Get methods return nil, nil
// when the case does not exist.
type Store interface {
	CreateCase(ctx context.Context, rec *CaseRecord) error
	GetCase(ctx context.Context, id uuid.UUID) (*CaseRecord, error)
	ListCases(ctx context.Context, filter CaseFilter) ([]*CaseRecord, error)
	UpdateCase(ctx context.Context, rec *CaseRecord) error
	DeleteCase(ctx context.Context, id uuid.UUID) error

	CreateCaseEvent(ctx context.Context, event *CaseEvent) error
	GetCaseEvents(ctx context.Context, caseID uuid.UUID) ([]*CaseEvent, error)

	GetStats(ctx context.Context) (*CaseStats, error)

	Close() error
}
