package state

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sonoprop/internal/profile"
	"github.com/leapstack-labs/sonoprop/internal/testutil"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(filepath.Join(t.TempDir(), "state.db")))
	require.NoError(t, store.InitSchema())

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, store.Close())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	assert.Error(t, store.InitSchema())
	_, err := store.CreateRun("beam", "")
	assert.Error(t, err)
	_, err = store.ListRuns(10)
	assert.Error(t, err)
	assert.Error(t, store.SaveProfile("id", &core.ProfileRecord{}))
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_InitSchema(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"runs", "profiles"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s does not exist", table)
		_ = rows.Close()
	}

	// Running migrations again is a no-op.
	assert.NoError(t, store.InitSchema())
}

func TestMigrate_UnknownDialect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	saved := gooseDialect
	gooseDialect = "not-a-dialect"
	t.Cleanup(func() { gooseDialect = saved })

	err = MigrateWithDB(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set dialect")

	_, err = NewWithDB(db, nil).GetMigrationVersion()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set dialect")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		status     core.RunStatus
		errMsg     string
		wantErrMsg string
	}{
		{name: "completed", status: core.RunStatusCompleted},
		{name: "failed", status: core.RunStatusFailed, errMsg: "not supported: absorbing boundary layer", wantErrMsg: "not supported: absorbing boundary layer"},
		{name: "cancelled", status: core.RunStatusCancelled, errMsg: "context canceled", wantErrMsg: "context canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)

			run, err := store.CreateRun("beam", `{"name":"beam"}`)
			require.NoError(t, err)
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, core.RunStatusRunning, run.Status)

			got, err := store.GetRun(run.ID)
			require.NoError(t, err)
			assert.Equal(t, "beam", got.Name)
			assert.Equal(t, `{"name":"beam"}`, got.Config)
			assert.Nil(t, got.CompletedAt)

			require.NoError(t, store.CompleteRun(run.ID, tt.status, tt.errMsg))

			got, err = store.GetRun(run.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.wantErrMsg, got.Error)
			require.NotNil(t, got.CompletedAt)
			assert.False(t, got.CompletedAt.Before(got.StartedAt))
		})
	}
}

func TestSQLiteStore_RunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.CompleteRun("missing", core.RunStatusCompleted, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		run, err := store.CreateRun(name, "")
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	all, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)

	limited, err := store.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.ElementsMatch(t, ids, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestSQLiteStore_Profiles(t *testing.T) {
	store := setupTestStore(t)
	run, err := store.CreateRun("beam", "")
	require.NoError(t, err)

	records := []*core.ProfileRecord{
		{Step: 4, Position: 0.005, Kind: core.StepSpecial, PeakMax: 1.2e6, PeakRMS: 4e5, FileName: "beam_z00005000"},
		{Step: 1, Position: 0.002, Kind: core.StepRegular, PeakMax: 1e6, PeakRMS: 3e5, FileName: "beam_z00002000"},
	}
	for _, rec := range records {
		require.NoError(t, store.SaveProfile(run.ID, rec))
	}

	// Replacing a step keeps one row.
	records[0].PeakMax = 1.3e6
	require.NoError(t, store.SaveProfile(run.ID, records[0]))

	got, err := store.ListProfiles(run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Step)
	assert.Equal(t, *records[0], *got[1])

	// Profiles must belong to a run.
	err = store.SaveProfile("missing", records[1])
	assert.Error(t, err)
}

func TestStoreSink(t *testing.T) {
	store := setupTestStore(t)
	run, err := store.CreateRun("beam", "")
	require.NoError(t, err)

	field := core.NewWaveField(4, 1, 2)
	field.Set(1, 0, 1, 2)
	p := profile.Extract(core.StepEvent{Step: 7, Position: 0.03, Kind: core.StepSpecial, Field: field})

	sink := &StoreSink{Store: store, RunID: run.ID}
	require.NoError(t, sink.Write(context.Background(), "beam", p))

	got, err := store.ListProfiles(run.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "beam_z00030000", got[0].FileName)
	assert.InDelta(t, 2, got[0].PeakMax, 1e-12)
	assert.InDelta(t, 1, got[0].PeakRMS, 1e-12)
}

func TestSQLiteStore_DatabaseErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(s *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "create run insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO runs").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.CreateRun("beam", "")
				return err
			},
			errMsg: "failed to create run",
		},
		{
			name: "complete run update fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE runs").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				return s.CompleteRun("id", core.RunStatusCompleted, "")
			},
			errMsg: "failed to complete run",
		},
		{
			name: "get run query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetRun("id")
				return err
			},
			errMsg: "failed to get run",
		},
		{
			name: "get run missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name").WillReturnError(sql.ErrNoRows)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetRun("id")
				return err
			},
			errMsg: "not found",
		},
		{
			name: "list runs query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.ListRuns(5)
				return err
			},
			errMsg: "failed to list runs",
		},
		{
			name: "save profile fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT OR REPLACE INTO profiles").WillReturnError(assert.AnError)
			},
			call: func(s *SQLiteStore) error {
				return s.SaveProfile("id", &core.ProfileRecord{})
			},
			errMsg: "failed to save profile",
		},
		{
			name: "list profiles scan fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT step").WillReturnRows(
					sqlmock.NewRows([]string{"step", "position", "kind", "peak_max", "peak_rms", "file_name"}).
						AddRow("not-a-number", 0.1, 0, 1.0, 1.0, "x"),
				)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.ListProfiles("id")
				return err
			},
			errMsg: "failed to scan profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			err = tt.call(NewWithDB(db, nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
