package service

import (
	"context"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/repository/models"
)

// KPIRepository defines the read operations the service needs from storage.
type KPIRepository interface {
	GetDailyRecords(ctx context.Context, week string) ([]kpi.DailyRecord, error)
	GetDailyRecordsByDate(ctx context.Context, employeeID, date string) ([]kpi.DailyRecord, error)
	GetCSATRecords(ctx context.Context, week string) ([]kpi.CSATRecord, error)
	GetMonthlyKPI(ctx context.Context, employeeID, month string) ([]models.MonthlyKPI, error)
	ListWeeks(ctx context.Context) ([]string, error)
	ListDates(ctx context.Context) ([]string, error)
	ListMonths(ctx context.Context) ([]string, error)
}
