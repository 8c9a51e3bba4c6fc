package grpc

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyTopPerformers  CacheKeyType = "grpc:top_performers"
	cacheKeyWeeklySummary  CacheKeyType = "grpc:weekly_summary"
	cacheKeyDailySummary   CacheKeyType = "grpc:daily_summary"
	cacheKeyMonthlySummary CacheKeyType = "grpc:monthly_summary"
	cacheKeyPeriods        CacheKeyType = "grpc:periods"
)

var _ KPIDashboardServer = (*GRPCHandlers)(nil)

type GRPCHandlers struct {
	kpis     KPIService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
	now      func() time.Time
}

// NewGRPCHandlers initializes the gRPC handlers. A nil cache disables caching.
func NewGRPCHandlers(kpis KPIService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if kpis == nil {
		panic("nil KPIService provided to NewGRPCHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	if cache == nil {
		cache = noopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		kpis:     kpis,
		cache:    cache,
		logger:   logger.Named("grpc-handler"),
		cacheTTL: ttl,
		now:      time.Now,
	}
}

func cacheKey(prefix CacheKeyType, parts ...string) string {
	return strings.Join(append([]string{string(prefix)}, parts...), ":")
}

func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "", nil
	case *structpb.Value_StringValue:
		return strings.TrimSpace(k.StringValue), nil
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64), nil
	default:
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string or number", name)
	}
}

func requiredField(req *structpb.Struct, name string) (string, error) {
	v, err := stringField(req, name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return v, nil
}

// limitField reads the optional leaderboard size. Zero means the server default.
func limitField(req *structpb.Struct) (int, error) {
	v, ok := req.GetFields()["limit"]
	if !ok {
		return 0, nil
	}

	var n float64
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n = k.NumberValue
	case *structpb.Value_StringValue:
		s := strings.TrimSpace(k.StringValue)
		if s == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, status.Error(codes.InvalidArgument, "limit must be an integer")
		}
		n = float64(i)
	default:
		return 0, status.Error(codes.InvalidArgument, "limit must be an integer")
	}

	if n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, status.Error(codes.InvalidArgument, "limit must be an integer")
	}
	if n < 0 {
		return 0, status.Error(codes.InvalidArgument, "limit must not be negative")
	}
	return int(n), nil
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrNoData):
		s.logger.Info("no data found", zap.String("op", op))
		return status.Error(codes.NotFound, "no data found for the given period")
	case errors.Is(err, service.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) encode(op string, fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		s.logger.Error("response encoding failed", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed: encode response", op)
	}
	return out, nil
}

func (s *GRPCHandlers) GetTopPerformers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	week, err := stringField(req, "week")
	if err != nil {
		return nil, err
	}
	week = kpi.NormalizePeriod(week)
	if week == "" {
		week = service.CurrentWeek(s.now())
	}
	limit, err := limitField(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := cacheKey(cacheKeyTopPerformers, week, strconv.Itoa(limit))

	results, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]kpi.RankedResult, error) {
		return s.kpis.TopPerformers(fetchCtx, week, limit)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetTopPerformers", err)
	}

	return s.encode("GetTopPerformers", map[string]any{
		"week":       week,
		"performers": mapRankedResults(results),
	})
}

func (s *GRPCHandlers) GetWeeklySummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredField(req, "employee_id")
	if err != nil {
		return nil, err
	}
	week, err := requiredField(req, "week")
	if err != nil {
		return nil, err
	}
	id, week = kpi.NormalizeID(id), kpi.NormalizePeriod(week)

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := cacheKey(cacheKeyWeeklySummary, id, week)

	summary, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.WeeklySummary, error) {
		return s.kpis.WeeklySummary(fetchCtx, id, week)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetWeeklySummary", err)
	}

	return s.encode("GetWeeklySummary", map[string]any{
		"employee_id":     summary.EmployeeID,
		"name":            summary.Name,
		"week":            summary.Week,
		"total_calls":     summary.TotalCalls,
		"aht":             kpi.FormatDuration(summary.AHTSeconds),
		"hold":            kpi.FormatDuration(summary.HoldSeconds),
		"wrap":            kpi.FormatDuration(summary.WrapSeconds),
		"auto_on":         kpi.FormatDuration(summary.AutoOnSeconds),
		"aht_seconds":     summary.AHTSeconds,
		"hold_seconds":    summary.HoldSeconds,
		"wrap_seconds":    summary.WrapSeconds,
		"auto_on_seconds": summary.AutoOnSeconds,
		"has_csat":        summary.HasCSAT,
		"csat_resolution": summary.CSATResolution,
		"csat_behaviour":  summary.CSATBehaviour,
	})
}

func (s *GRPCHandlers) GetDailySummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredField(req, "employee_id")
	if err != nil {
		return nil, err
	}
	date, err := requiredField(req, "date")
	if err != nil {
		return nil, err
	}
	id = kpi.NormalizeID(id)

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := cacheKey(cacheKeyDailySummary, id, date)

	summary, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.DailySummary, error) {
		return s.kpis.DailySummary(fetchCtx, id, date)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetDailySummary", err)
	}

	return s.encode("GetDailySummary", map[string]any{
		"employee_id":     summary.EmployeeID,
		"name":            summary.Name,
		"date":            summary.Date,
		"call_count":      summary.CallCount,
		"aht":             kpi.FormatDuration(summary.AHTSeconds),
		"hold":            kpi.FormatDuration(summary.HoldSeconds),
		"wrap":            kpi.FormatDuration(summary.WrapSeconds),
		"auto_on":         kpi.FormatDuration(summary.AutoOnSeconds),
		"aht_seconds":     summary.AHTSeconds,
		"hold_seconds":    summary.HoldSeconds,
		"wrap_seconds":    summary.WrapSeconds,
		"auto_on_seconds": summary.AutoOnSeconds,
		"csat_resolution": summary.CSATResolution,
		"csat_behaviour":  summary.CSATBehaviour,
	})
}

func (s *GRPCHandlers) GetMonthlySummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredField(req, "employee_id")
	if err != nil {
		return nil, err
	}
	month, err := requiredField(req, "month")
	if err != nil {
		return nil, err
	}
	id, month = kpi.NormalizeID(id), kpi.NormalizeMonth(month)

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := cacheKey(cacheKeyMonthlySummary, id, month)

	summary, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.MonthlySummary, error) {
		return s.kpis.MonthlySummary(fetchCtx, id, month)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetMonthlySummary", err)
	}

	return s.encode("GetMonthlySummary", mapMonthlySummary(summary))
}

func (s *GRPCHandlers) ListPeriods(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	periods, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey(cacheKeyPeriods), s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.Periods, error) {
		return s.kpis.Periods(fetchCtx)
	})
	if err != nil {
		return nil, s.handleError(ctx, "ListPeriods", err)
	}

	return s.encode("ListPeriods", map[string]any{
		"weeks":  stringList(periods.Weeks),
		"dates":  stringList(periods.Dates),
		"months": stringList(periods.Months),
	})
}

func stringList(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func mapRankedResults(results []kpi.RankedResult) []any {
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = map[string]any{
			"rank":            r.Rank,
			"employee_id":     r.EmployeeID,
			"name":            r.Name,
			"score":           r.Score,
			"call_count":      r.CallCount,
			"aht_seconds":     r.AHTSeconds,
			"hold_seconds":    r.HoldSeconds,
			"wrap_seconds":    r.WrapSeconds,
			"auto_on_seconds": r.AutoOnSeconds,
			"csat_resolution": r.CSATResolution,
			"csat_behaviour":  r.CSATBehaviour,
			"components": map[string]any{
				"hold":            r.Components.Hold,
				"wrap":            r.Components.Wrap,
				"auto_on":         r.Components.AutoOn,
				"csat_resolution": r.Components.CSATResolution,
				"csat_behaviour":  r.Components.CSATBehaviour,
			},
		}
	}
	return out
}

func mapMonthlySummary(m service.MonthlySummary) map[string]any {
	performance := make([]any, len(m.Performance))
	for i, p := range m.Performance {
		performance[i] = map[string]any{
			"description": p.Description,
			"metric":      p.Metric,
			"value":       p.Value,
			"unit":        p.Unit,
		}
	}

	scores := make([]any, len(m.Scores))
	for i, sc := range m.Scores {
		scores[i] = map[string]any{
			"weightage": sc.Weightage,
			"metric":    sc.Metric,
			"score":     sc.Score,
		}
	}

	out := map[string]any{
		"employee_id": m.Record.EmployeeID,
		"name":        m.Record.Name,
		"month":       m.Record.Month,
		"grand_total": m.Record.GrandTotal,
		"performance": performance,
		"kpi_scores":  scores,
	}

	if len(m.Targets) > 0 {
		targets := make(map[string]any, len(m.Targets))
		for k, v := range m.Targets {
			targets[k] = v
		}
		out["targets"] = targets
	}

	if m.Previous != nil {
		out["previous"] = map[string]any{
			"month": m.Previous.PreviousMonth,
			"score": m.Previous.PreviousScore,
			"delta": m.Previous.Delta,
		}
	}

	return out
}
