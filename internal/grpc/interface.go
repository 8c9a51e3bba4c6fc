package grpc

import (
	"context"
	"time"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type KPIService interface {
	TopPerformers(ctx context.Context, week string, n int) ([]kpi.RankedResult, error)
	WeeklySummary(ctx context.Context, employeeID, week string) (service.WeeklySummary, error)
	DailySummary(ctx context.Context, employeeID, date string) (service.DailySummary, error)
	MonthlySummary(ctx context.Context, employeeID, month string) (service.MonthlySummary, error)
	Periods(ctx context.Context) (service.Periods, error)
}
