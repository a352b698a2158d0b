package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winterop-com/servicekit-sub001/db"
)

func TestHistory_SaveAndRecent(t *testing.T) {
	sqldb, err := db.OpenSQLiteMemory()
	require.NoError(t, err)
	defer sqldb.Close()
	require.NoError(t, db.RunMigrations(sqldb))

	history := NewHistory(sqldb)
	ctx := context.Background()

	started := time.Now().UTC().Add(-time.Minute)
	finished := time.Now().UTC()
	record := Record{
		ID:          uuid.New(),
		Status:      StatusFailed,
		SubmittedAt: started.Add(-time.Second),
		StartedAt:   &started,
		FinishedAt:  &finished,
		Error:       "disk full",
	}
	require.NoError(t, history.Save(ctx, record))

	// Upsert: saving again with a new status replaces the row.
	record.Status = StatusCompleted
	record.Error = ""
	require.NoError(t, history.Save(ctx, record))

	records, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
	assert.Equal(t, StatusCompleted, records[0].Status)
	assert.Empty(t, records[0].Error)
	require.NotNil(t, records[0].FinishedAt)
}

func TestHistory_RecentOrdersNewestFirst(t *testing.T) {
	sqldb, err := db.OpenSQLiteMemory()
	require.NoError(t, err)
	defer sqldb.Close()
	require.NoError(t, db.RunMigrations(sqldb))

	history := NewHistory(sqldb)
	ctx := context.Background()

	base := time.Now().UTC()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id := uuid.New()
		ids = append(ids, id)
		require.NoError(t, history.Save(ctx, Record{
			ID:          id,
			Status:      StatusCompleted,
			SubmittedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := history.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ids[2], records[0].ID)
	assert.Equal(t, ids[1], records[1].ID)
}

func TestHistory_SaveError(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()

	mock.ExpectExec("INSERT INTO job_history").
		WillReturnError(errors.New("database is locked"))

	history := NewHistory(sqldb)
	err = history.Save(context.Background(), Record{
		ID:          uuid.New(),
		Status:      StatusCompleted,
		SubmittedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save job history")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory_RecentScanError(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()

	rows := sqlmock.NewRows([]string{"id", "status", "submitted_at", "started_at", "finished_at", "error"}).
		AddRow("not-a-uuid", "completed", time.Now().UTC(), nil, nil, nil)
	mock.ExpectQuery("SELECT id, status").WillReturnRows(rows)

	history := NewHistory(sqldb)
	_, err = history.Recent(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse job id")
}
