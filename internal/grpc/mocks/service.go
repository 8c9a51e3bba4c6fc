package mocks

import (
	"context"
	"errors"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/service"
)

// MockKPIService is a mock implementation of the KPIService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockKPIService struct {
	TopPerformersFunc  func(ctx context.Context, week string, n int) ([]kpi.RankedResult, error)
	WeeklySummaryFunc  func(ctx context.Context, employeeID, week string) (service.WeeklySummary, error)
	DailySummaryFunc   func(ctx context.Context, employeeID, date string) (service.DailySummary, error)
	MonthlySummaryFunc func(ctx context.Context, employeeID, month string) (service.MonthlySummary, error)
	PeriodsFunc        func(ctx context.Context) (service.Periods, error)
}

func (m *MockKPIService) TopPerformers(ctx context.Context, week string, n int) ([]kpi.RankedResult, error) {
	if m.TopPerformersFunc != nil {
		return m.TopPerformersFunc(ctx, week, n)
	}
	return nil, errors.New("TopPerformersFunc not implemented")
}

func (m *MockKPIService) WeeklySummary(ctx context.Context, employeeID, week string) (service.WeeklySummary, error) {
	if m.WeeklySummaryFunc != nil {
		return m.WeeklySummaryFunc(ctx, employeeID, week)
	}
	return service.WeeklySummary{}, errors.New("WeeklySummaryFunc not implemented")
}

func (m *MockKPIService) DailySummary(ctx context.Context, employeeID, date string) (service.DailySummary, error) {
	if m.DailySummaryFunc != nil {
		return m.DailySummaryFunc(ctx, employeeID, date)
	}
	return service.DailySummary{}, errors.New("DailySummaryFunc not implemented")
}

func (m *MockKPIService) MonthlySummary(ctx context.Context, employeeID, month string) (service.MonthlySummary, error) {
	if m.MonthlySummaryFunc != nil {
		return m.MonthlySummaryFunc(ctx, employeeID, month)
	}
	return service.MonthlySummary{}, errors.New("MonthlySummaryFunc not implemented")
}

func (m *MockKPIService) Periods(ctx context.Context) (service.Periods, error) {
	if m.PeriodsFunc != nil {
		return m.PeriodsFunc(ctx)
	}
	return service.Periods{}, errors.New("PeriodsFunc not implemented")
}
