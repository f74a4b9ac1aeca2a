package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/habistat-labs/habistat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "defaults",
			cfg:  Config{DBName: "habistat"},
			want: "host=localhost port=5432 dbname=habistat sslmode=disable",
		},
		{
			name: "full config",
			cfg: Config{
				Host:     "db.internal",
				Port:     6432,
				DBName:   "prices",
				User:     "ingest",
				Password: "secret",
			},
			want: "host=db.internal port=6432 dbname=prices sslmode=disable user=ingest password=secret",
		},
		{
			name: "sslmode override",
			cfg: Config{
				DBName:  "prices",
				Options: map[string]string{"sslmode": "require"},
			},
			want: "host=localhost port=5432 dbname=prices sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildPostgresDSN(tt.cfg))
		})
	}
}

func TestRebindPostgres(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO t (a, b) VALUES ($1, $2)",
		rebindPostgres("INSERT INTO t (a, b) VALUES (?, ?)"))
	assert.Equal(t, "SELECT 1", rebindPostgres("SELECT 1"))
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresStoreFromDB(db, testutil.NewTestLogger(t)), mock
}

func TestPostgresCreateLocation(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO locations`).
		WithArgs(sqlmock.AnyArg(), string(LocationState), "Jalisco", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	loc, err := st.CreateLocation(context.Background(), LocationState, "Jalisco", "")
	require.NoError(t, err)
	assert.NotEmpty(t, loc.ID)
	assert.Equal(t, "Jalisco", loc.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListLocations(t *testing.T) {
	st, mock := newMockStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "type", "name", "state", "parent_id", "created_at"}).
		AddRow("loc-1", "national", "Nacional", "", nil, now).
		AddRow("loc-2", "municipality", "Guadalajara", "Jalisco", "loc-3", now)

	mock.ExpectQuery(`SELECT id, type, name, state, parent_id, created_at FROM locations`).
		WillReturnRows(rows)

	locations, err := st.ListLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Nil(t, locations[0].ParentID)
	require.NotNil(t, locations[1].ParentID)
	assert.Equal(t, "loc-3", *locations[1].ParentID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertBatchIsTransactional(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO price_indices`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	usedID := "pt-used"
	records := []*PriceIndex{
		{LocationID: "loc-1", Quarter: 2, Year: 2020, IndexValue: 150.25},
		{LocationID: "loc-1", PropertyTypeID: &usedID, Quarter: 2, Year: 2020, IndexValue: 98.4},
	}

	require.NoError(t, st.UpsertPriceIndices(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertRollsBackOnFailure(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO price_indices`)
	prep.ExpectExec().WillReturnError(assert.AnError)
	mock.ExpectRollback()

	records := []*PriceIndex{
		{LocationID: "loc-1", Quarter: 2, Year: 2020, IndexValue: 150.25},
	}

	err := st.UpsertPriceIndices(context.Background(), records)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateUploadLogNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE upload_logs`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.UpdateUploadLog(context.Background(), "missing", UploadFailed, 0, "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
