// Package server builds the gRPC server that hosts the KPI dashboard together
// with the standard health service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

type Option func(*settings)

type settings struct {
	host         string
	port         int
	logger       *zap.Logger
	reflection   bool
	logging      bool
	recovery     bool
	maxConnIdle  time.Duration
	interceptors []grpc.UnaryServerInterceptor
}

// WithHost restricts the listener to one interface. Empty listens on all.
func WithHost(host string) Option {
	return func(s *settings) { s.host = host }
}

// WithPort sets the listen port; 0 asks the kernel for a free one.
func WithPort(port int) Option {
	return func(s *settings) { s.port = port }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func WithReflection(enabled bool) Option {
	return func(s *settings) { s.reflection = enabled }
}

// WithLogging installs LoggingInterceptor ahead of any other interceptor.
func WithLogging(enabled bool) Option {
	return func(s *settings) { s.logging = enabled }
}

// WithRecovery turns handler panics into codes.Internal responses.
func WithRecovery(enabled bool) Option {
	return func(s *settings) { s.recovery = enabled }
}

// WithMaxConnectionIdle closes client connections idle for longer than d.
// Zero keeps connections open indefinitely.
func WithMaxConnectionIdle(d time.Duration) Option {
	return func(s *settings) { s.maxConnIdle = d }
}

func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(s *settings) {
		s.interceptors = append(s.interceptors, interceptors...)
	}
}

// Server owns the listener, the gRPC server and the health registry.
type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server

	mu       sync.Mutex
	services []string
}

// New listens on the configured address and prepares a server with the
// health service registered. Nothing is served until Start.
func New(opts ...Option) (*Server, error) {
	cfg := settings{port: defaultPort, recovery: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if cfg.port < 0 || cfg.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", cfg.port)
	}

	addr := net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer(cfg.serverOptions()...)
	if cfg.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       cfg.logger.Named("grpc-server"),
		healthServer: healthServer,
	}, nil
}

// serverOptions chains logging, recovery, then caller interceptors.
func (cfg settings) serverOptions() []grpc.ServerOption {
	var chain []grpc.UnaryServerInterceptor
	if cfg.logging {
		chain = append(chain, LoggingInterceptor(cfg.logger))
	}
	if cfg.recovery {
		chain = append(chain, RecoveryInterceptor(cfg.logger))
	}
	chain = append(chain, cfg.interceptors...)

	var opts []grpc.ServerOption
	if len(chain) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(chain...))
	}
	if cfg.maxConnIdle > 0 {
		opts = append(opts, grpc.KeepaliveParams(keepalive.ServerParameters{MaxConnectionIdle: cfg.maxConnIdle}))
	}
	return opts
}

// RegisterServiceWithHealth registers a service and marks it SERVING.
func (s *Server) RegisterServiceWithHealth(serviceName string, register func(grpc.ServiceRegistrar)) {
	register(s.grpcServer)
	if serviceName == "" {
		return
	}

	s.mu.Lock()
	s.services = append(s.services, serviceName)
	s.mu.Unlock()

	s.healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("registered service with health check", zap.String("service", serviceName))
}

// SetServiceHealth updates the health status of a specific service.
func (s *Server) SetServiceHealth(serviceName string, status healthpb.HealthCheckResponse_ServingStatus) {
	s.healthServer.SetServingStatus(serviceName, status)
	s.logger.Info("updated service health",
		zap.String("service", serviceName),
		zap.String("status", status.String()))
}

// SetServing flips the overall status and every registered service at once.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	s.mu.Lock()
	names := append([]string{""}, s.services...)
	s.mu.Unlock()

	for _, name := range names {
		s.healthServer.SetServingStatus(name, status)
	}
	s.logger.Info("updated server health",
		zap.Strings("services", names[1:]),
		zap.String("status", status.String()))
}

// Start serves in the background and returns immediately.
func (s *Server) Start() {
	s.logger.Info("gRPC server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
}

// Shutdown marks every service NOT_SERVING and drains in-flight calls, forcing
// a stop when ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

// Addr returns the bound listener address, useful when the port was 0.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
