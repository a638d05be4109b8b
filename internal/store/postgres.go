package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

//go:embed schema.sql
var schema string

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const caseColumns = `case_id, name, status, document, results, created_at, updated_at`

func (s *PostgresStore) CreateCase(ctx context.Context, rec *CaseRecord) error {
	docJSON, err := json.Marshal(rec.Case)
	if err != nil {
		return fmt.Errorf("encode case: %w", err)
	}
	resultsJSON, err := marshalResults(rec.Results)
	if err != nil {
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO tradeoff_cases (case_id, name, status, document, results)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		rec.ID, rec.Name, rec.Status, docJSON, resultsJSON,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

func (s *PostgresStore) GetCase(ctx context.Context, id uuid.UUID) (*CaseRecord, error) {
	rec, err := scanCase(s.pool.QueryRow(ctx, `
		SELECT `+caseColumns+`
		FROM tradeoff_cases WHERE case_id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) ListCases(ctx context.Context, filter CaseFilter) ([]*CaseRecord, error) {
	query := `SELECT ` + caseColumns + ` FROM tradeoff_cases WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.Name != "" {
		n++
		query += fmt.Sprintf(" AND name = $%d", n)
		args = append(args, filter.Name)
	}

	query += " ORDER BY created_at DESC, case_id"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CaseRecord
	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateCase(ctx context.Context, rec *CaseRecord) error {
	docJSON, err := json.Marshal(rec.Case)
	if err != nil {
		return fmt.Errorf("encode case: %w", err)
	}
	resultsJSON, err := marshalResults(rec.Results)
	if err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx, `
		UPDATE tradeoff_cases
		SET name = $2, status = $3, document = $4, results = $5, updated_at = now()
		WHERE case_id = $1
		RETURNING created_at, updated_at`,
		rec.ID, rec.Name, rec.Status, docJSON, resultsJSON,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("case %s not found", rec.ID)
	}
	return err
}

func (s *PostgresStore) DeleteCase(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tradeoff_cases WHERE case_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("case %s not found", id)
	}
	return nil
}

func (s *PostgresStore) CreateCaseEvent(ctx context.Context, event *CaseEvent) error {
	payloadJSON, _ := json.Marshal(event.Payload)
	return s.pool.QueryRow(ctx, `
		INSERT INTO tradeoff_case_events (case_id, event, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		event.CaseID, event.Event, payloadJSON,
	).Scan(&event.ID, &event.CreatedAt)
}

func (s *PostgresStore) GetCaseEvents(ctx context.Context, caseID uuid.UUID) ([]*CaseEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, case_id, event, payload, created_at
		FROM tradeoff_case_events WHERE case_id = $1
		ORDER BY created_at, id`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CaseEvent
	for rows.Next() {
		e := &CaseEvent{}
		var payloadJSON []byte
		if err := rows.Scan(&e.ID, &e.CaseID, &e.Event, &payloadJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		if payloadJSON != nil {
			_ = json.Unmarshal(payloadJSON, &e.Payload)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*CaseStats, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, count(*) FROM tradeoff_cases GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &CaseStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		countStatus(stats, CaseStatus(status), count)
	}
	return stats, rows.Err()
}

func scanCase(row pgx.Row) (*CaseRecord, error) {
	rec := &CaseRecord{}
	var docJSON, resultsJSON []byte
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Status, &docJSON, &resultsJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Case = &model.Case{}
	if err := json.Unmarshal(docJSON, rec.Case); err != nil {
		return nil, fmt.Errorf("decode case %s: %w", rec.ID, err)
	}
	if resultsJSON != nil {
		if err := json.Unmarshal(resultsJSON, &rec.Results); err != nil {
			return nil, fmt.Errorf("decode results %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func marshalResults(res model.Results) ([]byte, error) {
	if res == nil {
		return nil, nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return b, nil
}
