package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"preop-drug-check/internal/domain/checks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "drugs", "surgery_date", "workflow_user",
	"status", "results", "error",
	"created_at", "duration_ms",
}

func newMock(t *testing.T) (*ChecksRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewChecksRepo(db), mock
}

func TestChecksRepo_Create(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO drug_checks").
		WithArgs(
			"c-1",
			`["A","B"]`,
			"2026-10-20",
			"webapp-user",
			"succeeded",
			`[{"drug":"A","text":"休薬不要","has_output":true},{"drug":"B","text":"","has_output":false}]`,
			"",
			created,
			int64(1500),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), checks.Check{
		ID:          "c-1",
		Drugs:       []string{"A", "B"},
		SurgeryDate: "2026-10-20",
		User:        "webapp-user",
		Status:      checks.StatusSucceeded,
		Results: []checks.Result{
			{Drug: "A", Text: "休薬不要", HasOutput: true},
			{Drug: "B"},
		},
		CreatedAt: created,
		Duration:  1500 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecksRepo_GetByID(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM drug_checks WHERE id = \\$1").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"c-1", []byte(`["A"]`), "2026-10-20", "webapp-user",
			"failed", []byte(`[]`), "「A」の確認中にエラーが発生しました (Status: 500): boom",
			created, int64(20),
		))

	c, err := repo.GetByID(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, c.Drugs)
	assert.Equal(t, checks.StatusFailed, c.Status)
	assert.Empty(t, c.Results)
	assert.Equal(t, 20*time.Millisecond, c.Duration)
	assert.Contains(t, c.Error, "Status: 500")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecksRepo_GetByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM drug_checks WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, checks.ErrNotFound)

	_, err = repo.GetByID(context.Background(), "  ")
	assert.ErrorIs(t, err, checks.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecksRepo_ListRecent(t *testing.T) {
	repo, mock := newMock(t)
	t1 := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)

	mock.ExpectQuery("FROM drug_checks ORDER BY created_at DESC LIMIT \\$1").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("c-2", []byte(`["B"]`), "2026-10-21", "u", "succeeded",
				[]byte(`[{"drug":"B","text":"ok","has_output":true,"cached":true}]`), "", t1, int64(5)).
			AddRow("c-1", []byte(`["A"]`), "2026-10-20", "u", "succeeded",
				[]byte(`[{"drug":"A","text":"ok","has_output":true}]`), "", t0, int64(5)))

	items, err := repo.ListRecent(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c-2", items[0].ID)
	assert.True(t, items[0].Results[0].Cached)
	assert.Equal(t, "B: ok", items[0].Results[0].Line())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS drug_checks").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
