package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
	"github.com/tailorworks-lab/tailorworks/internal/core/storage"
)

// newMockAdapter wires an Adapter around a sqlmock connection, skipping
// the constructor's ping/schema/prepare phases.
func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a := &Adapter{db: db}

	mock.ExpectPrepare(regexp.QuoteMeta(queryGetAnalytics))
	mock.ExpectPrepare(regexp.QuoteMeta(queryInsertAnalytics))
	mock.ExpectPrepare(regexp.QuoteMeta(queryUpdateAnalytics))
	mock.ExpectPrepare(regexp.QuoteMeta(queryListAnalyticsYears))

	a.stmtGet, err = db.Prepare(queryGetAnalytics)
	require.NoError(t, err)
	a.stmtInsert, err = db.Prepare(queryInsertAnalytics)
	require.NoError(t, err)
	a.stmtUpdate, err = db.Prepare(queryUpdateAnalytics)
	require.NoError(t, err)
	a.stmtList, err = db.Prepare(queryListAnalyticsYears)
	require.NoError(t, err)

	return a, mock
}

func sampleRecord() *analytics.AnalyticsRecord {
	ev := analytics.BillEvent{
		AmountMinor:  50000,
		BillType:     analytics.BillSold,
		CustomerType: analytics.CustomerNew,
		Action:       analytics.ActionAdd,
		Month:        "September",
		Day:          "9/16/2024",
		Year:         2024,
	}
	return analytics.Seed(ev)
}

func TestAdapter_GetDecodesDocument(t *testing.T) {
	a, mock := newMockAdapter(t)

	rec := sampleRecord()
	doc, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetAnalytics)).
		WithArgs(2024).
		WillReturnRows(sqlmock.NewRows([]string{"doc", "version"}).AddRow(doc, int64(3)))

	got, err := a.Get(context.Background(), 2024)
	require.NoError(t, err)
	require.Equal(t, 2024, got.Year)
	require.Equal(t, int64(50000), got.Income)
	require.Equal(t, int64(3), got.Version)
	require.Len(t, got.MonthlyData, 1)
	require.Equal(t, "Sep", got.MonthlyData[0].Month)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_GetMissingYear(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetAnalytics)).
		WithArgs(1999).
		WillReturnRows(sqlmock.NewRows([]string{"doc", "version"}))

	_, err := a.Get(context.Background(), 1999)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_PutInsertSetsVersion(t *testing.T) {
	a, mock := newMockAdapter(t)

	rec := sampleRecord()
	mock.ExpectQuery(regexp.QuoteMeta(queryInsertAnalytics)).
		WithArgs(2024, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(1)))

	require.NoError(t, a.Put(context.Background(), rec))
	require.Equal(t, int64(1), rec.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_PutInsertConflict(t *testing.T) {
	a, mock := newMockAdapter(t)

	rec := sampleRecord()
	mock.ExpectQuery(regexp.QuoteMeta(queryInsertAnalytics)).
		WithArgs(2024, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	err := a.Put(context.Background(), rec)
	require.ErrorIs(t, err, storage.ErrVersionConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_PutUpdateCAS(t *testing.T) {
	a, mock := newMockAdapter(t)

	rec := sampleRecord()
	rec.Version = 3

	mock.ExpectQuery(regexp.QuoteMeta(queryUpdateAnalytics)).
		WithArgs(2024, sqlmock.AnyArg(), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(4)))

	require.NoError(t, a.Put(context.Background(), rec))
	require.Equal(t, int64(4), rec.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_PutUpdateLostRace(t *testing.T) {
	a, mock := newMockAdapter(t)

	rec := sampleRecord()
	rec.Version = 3

	mock.ExpectQuery(regexp.QuoteMeta(queryUpdateAnalytics)).
		WithArgs(2024, sqlmock.AnyArg(), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	err := a.Put(context.Background(), rec)
	require.ErrorIs(t, err, storage.ErrVersionConflict)
	require.Equal(t, int64(3), rec.Version) // unchanged on failure
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_ListYears(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryListAnalyticsYears)).
		WillReturnRows(sqlmock.NewRows([]string{"year"}).AddRow(2023).AddRow(2024))

	years, err := a.ListYears(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{2023, 2024}, years)
	require.NoError(t, mock.ExpectationsWereMet())
}
