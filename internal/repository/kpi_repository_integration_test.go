package repository_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/repository"
	"github.com/godilite/kpi-server/internal/repository/models"
	"github.com/godilite/kpi-server/internal/service"
	dbbuilder "github.com/godilite/kpi-server/pkg/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
		dbbuilder.WithInitStatements(repository.Schema),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func seedTestData(t *testing.T, repo *repository.KPIRepository) {
	t.Helper()
	ctx := context.Background()

	daily := []kpi.DailyRecord{
		{EmployeeID: "1070", Name: "Asha", Date: "2025-10-13", Week: "42", CallCount: 10, AHT: "00:05:00", Wrap: "00:00:30", Hold: "00:01:00", AutoOn: "07:30:00", CSATResolution: "90%", CSATBehaviour: "95%"},
		{EmployeeID: "1070", Name: "Asha", Date: "2025-10-14", Week: "42", CallCount: 20, AHT: "00:06:00", Wrap: "00:00:40", Hold: "00:00:20", AutoOn: "08:00:00"},
		{EmployeeID: " 0815 ", Name: "Bo", Date: "2025-10-13", Week: "42", CallCount: "15", AHT: 300.0, Wrap: "bad", Hold: "0:45", AutoOn: "06:00:00"},
		{EmployeeID: "1070", Name: "Asha", Date: "2025-10-06", Week: "41", CallCount: 9, AHT: "00:04:00"},
	}
	n, err := repo.ImportDaily(ctx, daily, false)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	csat := []kpi.CSATRecord{
		{EmployeeID: "1070", Name: "Asha", Week: "42", Resolution: "88%", Behaviour: 92.5},
		{EmployeeID: "9999", Name: "Ghost", Week: "42", Resolution: "100%", Behaviour: "100%"},
		{EmployeeID: "1070", Name: "Asha", Week: "41", Resolution: "70%", Behaviour: "75%"},
	}
	_, err = repo.ImportCSAT(ctx, csat, false)
	require.NoError(t, err)

	monthly := []models.MonthlyKPI{
		{EmployeeID: "1070", Name: "Asha", Month: "September", GrandTotal: 3.8, AutoOn: "07:10:00", Quality: "91%"},
		{EmployeeID: "1070", Name: "Asha", Month: "October", GrandTotal: 4.2, AutoOn: "07:40:00", Quality: "94%", TargetPKT: "95%"},
	}
	_, err = repo.ImportMonthly(ctx, monthly, false)
	require.NoError(t, err)
}

func TestKPIRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewKPIRepository(db)
	seedTestData(t, repo)

	t.Run("GetDailyRecords", func(t *testing.T) {
		records, err := repo.GetDailyRecords(ctx, "42")
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, "1070", records[0].EmployeeID)
		assert.Equal(t, "0815", records[2].EmployeeID, "ids are trimmed on import")
		assert.Equal(t, 10.0, kpi.ParseCount(records[0].CallCount))
		assert.Equal(t, 15.0, kpi.ParseCount(records[2].CallCount))
		assert.Equal(t, 300.0, kpi.ParseDuration(records[0].AHT))
		assert.Equal(t, 300.0, kpi.ParseDuration(records[2].AHT))
		assert.Equal(t, 90.0, kpi.ParsePercentage(records[0].CSATResolution))
		assert.Nil(t, records[1].CSATResolution)
	})

	t.Run("GetDailyRecords trims the week key", func(t *testing.T) {
		records, err := repo.GetDailyRecords(ctx, " 41 ")
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("GetDailyRecordsByDate", func(t *testing.T) {
		records, err := repo.GetDailyRecordsByDate(ctx, "0815", "2025-10-13")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Bo", records[0].Name)

		records, err = repo.GetDailyRecordsByDate(ctx, "0815", "2025-10-14")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("GetCSATRecords", func(t *testing.T) {
		records, err := repo.GetCSATRecords(ctx, "42")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 88.0, kpi.ParsePercentage(records[0].Resolution))
		assert.Equal(t, 92.5, kpi.ParsePercentage(records[0].Behaviour))
	})

	t.Run("aggregation over stored rows", func(t *testing.T) {
		daily, err := repo.GetDailyRecords(ctx, "42")
		require.NoError(t, err)
		csat, err := repo.GetCSATRecords(ctx, "42")
		require.NoError(t, err)

		rows := kpi.AggregatePeriod(daily, csat, "42")

		require.Len(t, rows, 2)
		assert.Equal(t, 30.0, rows[0].CallCount)
		assert.Equal(t, 88.0, rows[0].CSATResolution)
		assert.Zero(t, rows[1].CSATResolution)
	})

	t.Run("GetMonthlyKPI", func(t *testing.T) {
		records, err := repo.GetMonthlyKPI(ctx, "1070", "October")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 4.2, records[0].GrandTotal)
		assert.Equal(t, "94%", records[0].Quality)
		assert.True(t, records[0].HasTargets())
	})

	t.Run("period listings", func(t *testing.T) {
		weeks, err := repo.ListWeeks(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"41", "42"}, weeks)

		dates, err := repo.ListDates(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-10-06", "2025-10-13", "2025-10-14"}, dates)

		months, err := repo.ListMonths(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"September", "October"}, months)
	})

	t.Run("import with replace clears the table", func(t *testing.T) {
		_, err := repo.ImportCSAT(ctx, []kpi.CSATRecord{{EmployeeID: "1", Week: "50", Resolution: 1, Behaviour: 1}}, true)
		require.NoError(t, err)

		records, err := repo.GetCSATRecords(ctx, "42")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestKPIRepository_EnsureSchema(t *testing.T) {
	db, err := dbbuilder.New(dbbuilder.WithMaxOpenConns(1))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewKPIRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.EnsureSchema(context.Background()), "schema creation is idempotent")

	weeks, err := repo.ListWeeks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, weeks)
}

func TestKPIRepository_MonthSpellings(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewKPIRepository(setupTestDB(t))

	_, err := repo.ImportMonthly(ctx, []models.MonthlyKPI{
		{EmployeeID: "1070", Name: "Asha", Month: "Sep", GrandTotal: 3.85},
		{EmployeeID: "1070", Name: "Asha", Month: "october", GrandTotal: 4.2},
	}, true)
	require.NoError(t, err)

	months, err := repo.ListMonths(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"September", "October"}, months)

	for _, month := range []string{"OCTOBER", "oct", " October "} {
		records, err := repo.GetMonthlyKPI(ctx, "1070", month)
		require.NoError(t, err)
		require.Len(t, records, 1, month)
		assert.Equal(t, 4.2, records[0].GrandTotal)
	}

	svc := service.NewKPIService(repo, zap.NewNop())
	periods, err := svc.Periods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"September", "October"}, periods.Months)

	for _, month := range periods.Months {
		summary, err := svc.MonthlySummary(ctx, "1070", month)
		require.NoError(t, err, month)
		assert.Equal(t, month, summary.Record.Month)
	}

	summary, err := svc.MonthlySummary(ctx, "1070", "october")
	require.NoError(t, err)
	require.NotNil(t, summary.Previous)
	assert.Equal(t, "September", summary.Previous.PreviousMonth)
	assert.Equal(t, 0.35, summary.Previous.Delta)
}
