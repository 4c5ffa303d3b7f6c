package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
)

func newMockRepo(t *testing.T) (*UsageRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewUsageRepository(NewDBFromConn(conn, zap.NewNop()), zap.NewNop()), mock
}

func TestInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := models.UsageRecord{
		ID:           uuid.New(),
		Timestamp:    time.Now(),
		Model:        "mistral-7b",
		Provider:     models.ProviderMistral,
		InputTokens:  42,
		OutputTokens: 17,
		Cost:         0.0001,
		Savings:      0.0025,
		Latency:      230 * time.Millisecond,
	}

	mock.ExpectExec("INSERT INTO usage_records").
		WithArgs(rec.ID, rec.Timestamp, rec.Model, "mistral", rec.InputTokens,
			rec.OutputTokens, rec.Cost, rec.Savings, int64(230)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO usage_records").
		WillReturnError(assert.AnError)

	err := repo.Insert(context.Background(), models.UsageRecord{ID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert usage record")
}

func TestRecent(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	ts := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "timestamp", "model", "provider", "input_tokens",
		"output_tokens", "cost", "savings", "latency_ms",
	}).AddRow(id, ts, "gpt-4", "openai", 100, 50, 0.006, 0.0, int64(900))

	mock.ExpectQuery("SELECT (.+) FROM usage_records").
		WithArgs(10).
		WillReturnRows(rows)

	got, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "gpt-4", got[0].Model)
	assert.Equal(t, models.ProviderOpenAI, got[0].Provider)
	assert.Equal(t, 900*time.Millisecond, got[0].Latency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchema(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS usage_records").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
