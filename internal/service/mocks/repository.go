package mocks

import (
	"context"
	"errors"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/repository/models"
)

// MockKPIRepository is a mock implementation of the KPIRepository interface
// for testing the service layer.
type MockKPIRepository struct {
	GetDailyRecordsFunc       func(ctx context.Context, week string) ([]kpi.DailyRecord, error)
	GetDailyRecordsByDateFunc func(ctx context.Context, employeeID, date string) ([]kpi.DailyRecord, error)
	GetCSATRecordsFunc        func(ctx context.Context, week string) ([]kpi.CSATRecord, error)
	GetMonthlyKPIFunc         func(ctx context.Context, employeeID, month string) ([]models.MonthlyKPI, error)
	ListWeeksFunc             func(ctx context.Context) ([]string, error)
	ListDatesFunc             func(ctx context.Context) ([]string, error)
	ListMonthsFunc            func(ctx context.Context) ([]string, error)
}

func (m *MockKPIRepository) GetDailyRecords(ctx context.Context, week string) ([]kpi.DailyRecord, error) {
	if m.GetDailyRecordsFunc != nil {
		return m.GetDailyRecordsFunc(ctx, week)
	}
	return nil, errors.New("GetDailyRecordsFunc not implemented")
}

func (m *MockKPIRepository) GetDailyRecordsByDate(ctx context.Context, employeeID, date string) ([]kpi.DailyRecord, error) {
	if m.GetDailyRecordsByDateFunc != nil {
		return m.GetDailyRecordsByDateFunc(ctx, employeeID, date)
	}
	return nil, errors.New("GetDailyRecordsByDateFunc not implemented")
}

// GetCSATRecords returns no rows when unset, since a week without surveys is normal.
func (m *MockKPIRepository) GetCSATRecords(ctx context.Context, week string) ([]kpi.CSATRecord, error) {
	if m.GetCSATRecordsFunc != nil {
		return m.GetCSATRecordsFunc(ctx, week)
	}
	return nil, nil
}

func (m *MockKPIRepository) GetMonthlyKPI(ctx context.Context, employeeID, month string) ([]models.MonthlyKPI, error) {
	if m.GetMonthlyKPIFunc != nil {
		return m.GetMonthlyKPIFunc(ctx, employeeID, month)
	}
	return nil, errors.New("GetMonthlyKPIFunc not implemented")
}

func (m *MockKPIRepository) ListWeeks(ctx context.Context) ([]string, error) {
	if m.ListWeeksFunc != nil {
		return m.ListWeeksFunc(ctx)
	}
	return nil, errors.New("ListWeeksFunc not implemented")
}

func (m *MockKPIRepository) ListDates(ctx context.Context) ([]string, error) {
	if m.ListDatesFunc != nil {
		return m.ListDatesFunc(ctx)
	}
	return nil, errors.New("ListDatesFunc not implemented")
}

func (m *MockKPIRepository) ListMonths(ctx context.Context) ([]string, error) {
	if m.ListMonthsFunc != nil {
		return m.ListMonthsFunc(ctx)
	}
	return nil, errors.New("ListMonthsFunc not implemented")
}
