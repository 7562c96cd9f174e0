package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewRepository(gdb), mock
}

var runColumns = []string{
	"id", "model_id", "location", "data_source", "rows", "train_rows", "test_rows", "classes",
	"accuracy", "macro_f1", "params", "status", "error", "started_at", "finished_at", "created_at",
}

func TestRecordAssignsID(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	mock.ExpectExec(`INSERT INTO "training_runs"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &TrainingRun{
		ModelID:   "m-1",
		Status:    StatusSucceeded,
		Params:    `{"n_estimators":200}`,
		StartedAt: time.Now(),
	}
	require.NoError(t, repo.Record(context.Background(), run))

	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWrapsDatabaseErrors(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	mock.ExpectExec(`INSERT INTO "training_runs"`).
		WillReturnError(errors.New("connection reset"))

	err := repo.Record(context.Background(), &TrainingRun{Status: StatusFailed, Params: "{}"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record training run")
}

func TestLatest(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	id := uuid.New()
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "training_runs" ORDER BY started_at DESC`).
		WillReturnRows(sqlmock.NewRows(runColumns).AddRow(
			id.String(), "m-1", "model_pipeline.json", "train_data.csv", 100, 80, 20, 17,
			0.81, 0.77, "{}", StatusSucceeded, "", started, started.Add(3*time.Second), started,
		))

	run, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, 0.81, run.Accuracy)
	assert.Equal(t, 3*time.Second, run.Duration())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestWithoutRuns(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	mock.ExpectQuery(`SELECT \* FROM "training_runs"`).
		WillReturnRows(sqlmock.NewRows(runColumns))

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestList(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "training_runs" ORDER BY started_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow(uuid.NewString(), "m-2", "a.json", "d.csv", 10, 8, 2, 3, 0.5, 0.4, "{}", StatusSucceeded, "", now, now, now).
			AddRow(uuid.NewString(), "", "a.json", "d.csv", 0, 0, 0, 0, 0.0, 0.0, "{}", StatusFailed, "bad data", now, now, now))

	runs, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, StatusFailed, runs[1].Status)
	assert.Equal(t, "bad data", runs[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
