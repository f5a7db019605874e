package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"preop-drug-check/internal/domain/checks"
)

type ChecksRepo struct {
	db *sql.DB
}

func NewChecksRepo(db *sql.DB) *ChecksRepo {
	return &ChecksRepo{db: db}
}

// resultRow es la forma en que se guardan los resultados en JSONB.
type resultRow struct {
	Drug      string `json:"drug"`
	Text      string `json:"text"`
	HasOutput bool   `json:"has_output"`
	Cached    bool   `json:"cached,omitempty"`
}

func (r *ChecksRepo) Create(ctx context.Context, c checks.Check) error {
	drugs, err := json.Marshal(nonNil(c.Drugs))
	if err != nil {
		return fmt.Errorf("marshal drugs: %w", err)
	}

	rows := make([]resultRow, 0, len(c.Results))
	for _, res := range c.Results {
		rows = append(rows, resultRow{Drug: res.Drug, Text: res.Text, HasOutput: res.HasOutput, Cached: res.Cached})
	}
	results, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO drug_checks (
			id, drugs, surgery_date, workflow_user,
			status, results, error,
			created_at, duration_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		c.ID,
		string(drugs),
		c.SurgeryDate,
		c.User,
		string(c.Status),
		string(results),
		c.Error,
		c.CreatedAt,
		c.Duration.Milliseconds(),
	)
	return err
}

const selectColumns = `
	SELECT
		id, drugs, surgery_date, workflow_user,
		status, results, error,
		created_at, duration_ms
	FROM drug_checks
`

func (r *ChecksRepo) GetByID(ctx context.Context, id string) (checks.Check, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return checks.Check{}, checks.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectColumns+" WHERE id = $1", id)
	c, err := scanCheck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return checks.Check{}, checks.ErrNotFound
		}
		return checks.Check{}, err
	}
	return c, nil
}

func (r *ChecksRepo) ListRecent(ctx context.Context, limit int) ([]checks.Check, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, selectColumns+" ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]checks.Check, 0)
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheck(s scanner) (checks.Check, error) {
	var (
		c              checks.Check
		drugs, results []byte
		status         string
		durationMS     int64
	)
	if err := s.Scan(
		&c.ID,
		&drugs,
		&c.SurgeryDate,
		&c.User,
		&status,
		&results,
		&c.Error,
		&c.CreatedAt,
		&durationMS,
	); err != nil {
		return checks.Check{}, err
	}

	if err := json.Unmarshal(drugs, &c.Drugs); err != nil {
		return checks.Check{}, fmt.Errorf("decode drugs: %w", err)
	}
	var rows []resultRow
	if err := json.Unmarshal(results, &rows); err != nil {
		return checks.Check{}, fmt.Errorf("decode results: %w", err)
	}
	for _, rr := range rows {
		c.Results = append(c.Results, checks.Result{Drug: rr.Drug, Text: rr.Text, HasOutput: rr.HasOutput, Cached: rr.Cached})
	}

	c.Status = checks.Status(status)
	c.Duration = time.Duration(durationMS) * time.Millisecond
	return c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
