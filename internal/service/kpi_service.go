package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/kpi-server/internal/kpi"
)

const (
	dbTimeout = 2 * time.Second
)

var (
	ErrNoData          = errors.New("no data found")
	ErrStorageFailure  = errors.New("storage failure")
	ErrInvalidArgument = errors.New("invalid argument")
)

// KPIService aggregates sheet data per employee and period and builds the
// leaderboard.
type KPIService struct {
	storage KPIRepository
	logger  *zap.Logger
	weights kpi.ScoreWeights
	topN    int
}

type Option func(*KPIService)

// WithWeights overrides the composite score weights.
func WithWeights(w kpi.ScoreWeights) Option {
	return func(s *KPIService) { s.weights = w }
}

// WithTopN sets the leaderboard size used when callers pass n <= 0.
func WithTopN(n int) Option {
	return func(s *KPIService) {
		if n > 0 {
			s.topN = n
		}
	}
}

// NewKPIService creates a new KPIService instance.
func NewKPIService(storage KPIRepository, logger *zap.Logger, opts ...Option) *KPIService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &KPIService{
		storage: storage,
		logger:  logger,
		weights: kpi.DefaultScoreWeights(),
		topN:    kpi.DefaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentWeek returns the ISO week number of now as a period key.
func CurrentWeek(now time.Time) string {
	_, week := now.ISOWeek()
	return strconv.Itoa(week)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *KPIService) loadWeek(ctx context.Context, week string) ([]kpi.DailyRecord, []kpi.CSATRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		daily []kpi.DailyRecord
		csat  []kpi.CSATRecord
	)

	g, gctx := errgroup.WithContext(dbCtx)
	g.Go(func() error {
		var err error
		daily, err = s.storage.GetDailyRecords(gctx, week)
		return err
	})
	g.Go(func() error {
		var err error
		csat, err = s.storage.GetCSATRecords(gctx, week)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return daily, csat, nil
}

// TopPerformers ranks every employee with daily data in week and returns the
// best n. A non-positive n uses the configured default.
func (s *KPIService) TopPerformers(ctx context.Context, week string, n int) ([]kpi.RankedResult, error) {
	week = kpi.NormalizePeriod(week)
	if week == "" {
		return nil, fmt.Errorf("%w: week is required", ErrInvalidArgument)
	}
	if n <= 0 {
		n = s.topN
	}

	daily, csat, err := s.loadWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	if len(daily) == 0 {
		return nil, ErrNoData
	}

	rows, stats := kpi.AggregatePeriodWithStats(daily, csat, week)
	if stats.DurationFallbacks > 0 || stats.PercentFallbacks > 0 {
		s.logger.Warn("unreadable metric cells counted as zero",
			zap.String("week", week),
			zap.Int("duration_cells", stats.DurationFallbacks),
			zap.Int("percent_cells", stats.PercentFallbacks))
	}

	ranked := kpi.RankTopPerformers(rows, s.weights, n)

	s.logger.Info("ranked top performers",
		zap.String("week", week),
		zap.Int("employees", len(rows)),
		zap.Int("daily_rows", stats.DailyRows),
		zap.Int("csat_rows", stats.CSATRows),
		zap.Int("returned", len(ranked)))

	return ranked, nil
}

// WeeklySummary returns one employee's aggregated metrics for a week.
func (s *KPIService) WeeklySummary(ctx context.Context, employeeID, week string) (WeeklySummary, error) {
	id := kpi.NormalizeID(employeeID)
	week = kpi.NormalizePeriod(week)
	if id == "" || week == "" {
		return WeeklySummary{}, fmt.Errorf("%w: employee id and week are required", ErrInvalidArgument)
	}

	daily, csat, err := s.loadWeek(ctx, week)
	if err != nil {
		return WeeklySummary{}, err
	}

	var empDaily []kpi.DailyRecord
	for _, d := range daily {
		if kpi.NormalizeID(d.EmployeeID) == id {
			empDaily = append(empDaily, d)
		}
	}
	if len(empDaily) == 0 {
		return WeeklySummary{}, ErrNoData
	}

	var empCSAT []kpi.CSATRecord
	for _, c := range csat {
		if kpi.NormalizeID(c.EmployeeID) == id {
			empCSAT = append(empCSAT, c)
		}
	}

	rows := kpi.AggregatePeriod(empDaily, empCSAT, week)
	if len(rows) == 0 {
		return WeeklySummary{}, ErrNoData
	}
	r := rows[0]

	return WeeklySummary{
		EmployeeID:     r.EmployeeID,
		Name:           r.Name,
		Week:           week,
		TotalCalls:     r.CallCount,
		AHTSeconds:     r.AHTSeconds,
		HoldSeconds:    r.HoldSeconds,
		WrapSeconds:    r.WrapSeconds,
		AutoOnSeconds:  r.AutoOnSeconds,
		HasCSAT:        len(empCSAT) > 0,
		CSATResolution: r.CSATResolution,
		CSATBehaviour:  r.CSATBehaviour,
	}, nil
}

// DailySummary returns one employee's metrics for a single day.
func (s *KPIService) DailySummary(ctx context.Context, employeeID, date string) (DailySummary, error) {
	id := kpi.NormalizeID(employeeID)
	if id == "" || date == "" {
		return DailySummary{}, fmt.Errorf("%w: employee id and date are required", ErrInvalidArgument)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	records, err := s.storage.GetDailyRecordsByDate(dbCtx, id, date)
	if err != nil {
		return DailySummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(records) == 0 {
		return DailySummary{}, ErrNoData
	}

	d := records[0]
	return DailySummary{
		EmployeeID:     id,
		Name:           d.Name,
		Date:           d.Date,
		CallCount:      kpi.ParseCount(d.CallCount),
		AHTSeconds:     kpi.ParseDuration(d.AHT),
		HoldSeconds:    kpi.ParseDuration(d.Hold),
		WrapSeconds:    kpi.ParseDuration(d.Wrap),
		AutoOnSeconds:  kpi.ParseDuration(d.AutoOn),
		CSATResolution: kpi.ParsePercentage(d.CSATResolution),
		CSATBehaviour:  kpi.ParsePercentage(d.CSATBehaviour),
	}, nil
}

// Periods lists the weeks, dates and months available for selection.
func (s *KPIService) Periods(ctx context.Context) (Periods, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var weeks, dates, months []string

	g, gctx := errgroup.WithContext(dbCtx)
	g.Go(func() error {
		var err error
		weeks, err = s.storage.ListWeeks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dates, err = s.storage.ListDates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		months, err = s.storage.ListMonths(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Periods{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return Periods{
		Weeks:  sortWeeks(weeks),
		Dates:  sortDates(dates),
		Months: orderMonths(canonicalMonths(months)),
	}, nil
}
