package projection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tailorworks-lab/tailorworks/internal/aggregation"
	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
	"github.com/tailorworks-lab/tailorworks/internal/core/storage"
	"github.com/tailorworks-lab/tailorworks/internal/core/storage/memory"
)

// seedTwoMonths stores a 2024 record with September and October
// activity on two distinct days.
func seedTwoMonths(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	agg := aggregation.NewService(store, analytics.Options{LegacyDeleteQuirks: true}, 0)
	ctx := context.Background()

	events := []analytics.BillEvent{
		{AmountMinor: 10000, BillType: analytics.BillSold, CustomerType: analytics.CustomerNew,
			Action: analytics.ActionAdd, Month: "September", Day: "9/16/2024", Year: 2024},
		{AmountMinor: 20000, BillType: analytics.BillStitched, CustomerType: analytics.CustomerOld,
			Action: analytics.ActionAdd, Month: "October", Day: "10/1/2024", Year: 2024},
	}
	for _, ev := range events {
		_, err := agg.ApplyBillEvent(ctx, ev)
		require.NoError(t, err)
	}
	return store
}

func TestFetchYear_NoFilters(t *testing.T) {
	svc := NewService(seedTwoMonths(t))

	rec, err := svc.FetchYear(context.Background(), YearQuery{Year: 2024})
	require.NoError(t, err)
	require.Equal(t, int64(30000), rec.Income)
	require.Len(t, rec.MonthlyData, 2)
	require.Len(t, rec.DailyData, 2)
}

func TestFetchYear_MonthFilterLeavesDailyDataAlone(t *testing.T) {
	svc := NewService(seedTwoMonths(t))

	rec, err := svc.FetchYear(context.Background(), YearQuery{Year: 2024, Month: "September"})
	require.NoError(t, err)
	require.Len(t, rec.MonthlyData, 1)
	require.Equal(t, "Sep", rec.MonthlyData[0].Month)
	require.Len(t, rec.DailyData, 2)

	// Full name and key select the same bucket.
	rec2, err := svc.FetchYear(context.Background(), YearQuery{Year: 2024, Month: "Sep"})
	require.NoError(t, err)
	require.Equal(t, rec.MonthlyData, rec2.MonthlyData)
}

func TestFetchYear_DayFilterIsSubstringMatch(t *testing.T) {
	svc := NewService(seedTwoMonths(t))

	rec, err := svc.FetchYear(context.Background(), YearQuery{Year: 2024, Day: "10/1"})
	require.NoError(t, err)
	require.Len(t, rec.DailyData, 1)
	require.Equal(t, "10/1/2024", rec.DailyData[0].Day)
	require.Len(t, rec.MonthlyData, 2)
}

func TestFetchYear_FiltersAreIndependent(t *testing.T) {
	svc := NewService(seedTwoMonths(t))

	rec, err := svc.FetchYear(context.Background(), YearQuery{Year: 2024, Month: "October", Day: "9/16"})
	require.NoError(t, err)
	require.Len(t, rec.MonthlyData, 1)
	require.Equal(t, "Oct", rec.MonthlyData[0].Month)
	require.Len(t, rec.DailyData, 1)
	require.Equal(t, "9/16/2024", rec.DailyData[0].Day)

	// Cumulative totals are never narrowed.
	require.Equal(t, int64(30000), rec.Income)
}

func TestFetchYear_DoesNotMutateStoredRecord(t *testing.T) {
	store := seedTwoMonths(t)
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.FetchYear(ctx, YearQuery{Year: 2024, Month: "September", Day: "9/16"})
	require.NoError(t, err)

	stored, err := store.Get(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, stored.MonthlyData, 2)
	require.Len(t, stored.DailyData, 2)
}

func TestFetchYear_MissingYear(t *testing.T) {
	svc := NewService(memory.NewStore())
	_, err := svc.FetchYear(context.Background(), YearQuery{Year: 1999})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFetchYear_InvalidQueries(t *testing.T) {
	svc := NewService(seedTwoMonths(t))
	ctx := context.Background()

	_, err := svc.FetchYear(ctx, YearQuery{Year: 0})
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = svc.FetchYear(ctx, YearQuery{Year: 2024, Month: "Se"})
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestYears(t *testing.T) {
	svc := NewService(seedTwoMonths(t))
	years, err := svc.Years(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{2024}, years)
}
