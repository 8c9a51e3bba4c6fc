package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/TestMethod",
	}

	t.Run("successful request", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		interceptor := LoggingInterceptor(zap.New(core))

		var seen string
		resp, err := interceptor(context.Background(), "test request", info, func(ctx context.Context, req any) (any, error) {
			seen = RequestID(ctx)
			return "success", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "success", resp)

		_, parseErr := uuid.Parse(seen)
		assert.NoError(t, parseErr, "generated request id should be a uuid")

		completed := logs.FilterMessage("gRPC request completed").All()
		require.Len(t, completed, 1)
		assert.Equal(t, seen, completed[0].ContextMap()["request_id"])
		assert.Equal(t, "/test.Service/TestMethod", completed[0].ContextMap()["method"])
	})

	t.Run("caller supplied request id", func(t *testing.T) {
		interceptor := LoggingInterceptor(zaptest.NewLogger(t))
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-123"))

		var seen string
		_, err := interceptor(ctx, "test request", info, func(ctx context.Context, req any) (any, error) {
			seen = RequestID(ctx)
			return nil, nil
		})

		require.NoError(t, err)
		assert.Equal(t, "req-123", seen)
	})

	t.Run("server error", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		interceptor := LoggingInterceptor(zap.New(core))

		_, err := interceptor(context.Background(), "test request", info, func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.Internal, "database error")
		})

		assert.Equal(t, codes.Internal, status.Code(err))
		assert.Equal(t, 1, logs.FilterMessage("gRPC request failed").Len())
	})

	t.Run("client error", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		interceptor := LoggingInterceptor(zap.New(core))

		_, err := interceptor(context.Background(), "test request", info, func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.InvalidArgument, "test error")
		})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		rejected := logs.FilterMessage("gRPC request rejected").All()
		require.Len(t, rejected, 1)
		assert.Equal(t, zapcore.WarnLevel, rejected[0].Level)
	})
}

func TestRequestIDWithoutInterceptor(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
}

func TestServerBuilderInvalidPort(t *testing.T) {
	_, err := New(WithPort(70000))
	assert.ErrorContains(t, err, "invalid port 70000")

	_, err = New(WithPort(-1))
	assert.ErrorContains(t, err, "invalid port -1")
}

func TestServerBuilderWithLogging(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server, err := New(
		WithPort(0),
		WithLogger(logger),
		WithLogging(true),
	)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Logf("Server shutdown error: %v", err)
		}
	}()

	assert.NotNil(t, server.grpcServer)
	assert.NotNil(t, server.logger)
	assert.NotNil(t, server.healthServer)

	server.RegisterServiceWithHealth("kpi.v1.KPIDashboard", func(s grpc.ServiceRegistrar) {})
	server.Start()

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthClient := healthpb.NewHealthClient(conn)

	var header metadata.MD
	resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	assert.NotEmpty(t, header.Get(RequestIDHeader))

	resp, err = healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "kpi.v1.KPIDashboard"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	server.SetServiceHealth("kpi.v1.KPIDashboard", healthpb.HealthCheckResponse_NOT_SERVING)

	resp, err = healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "kpi.v1.KPIDashboard"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
