package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpchandler "github.com/ogurasousui/payroll-api/internal/adapters/grpc/handler"
	"github.com/ogurasousui/payroll-api/internal/core/department"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
	"github.com/ogurasousui/payroll-api/internal/core/jobgrade"
	"github.com/ogurasousui/payroll-api/internal/platform/config"
)

const defaultShutdownTimeout = 10 * time.Second

// Dependencies はサーバーが公開するユースケースと周辺機能です。
type Dependencies struct {
	Employees   employee.UseCase
	Departments department.UseCase
	JobGrades   jobgrade.UseCase

	// Gatherer は /metrics で公開するレジストリです。nil の場合は prometheus.DefaultGatherer を使います。
	Gatherer prometheus.Gatherer

	// Ready は /healthz で呼ばれる疎通確認です。nil の場合は常に成功します。
	Ready func(ctx context.Context) error
}

// Server は HTTP と gRPC サーバーのライフサイクルを管理します。
type Server struct {
	httpAddr        string
	grpcAddr        string
	shutdownTimeout time.Duration
	logger          zerolog.Logger

	echo       *echo.Echo
	grpcServer *grpc.Server
	health     *health.Server
}

// New は HTTP と gRPC の両サーバーを構築します。
func New(cfg config.ServerConfig, deps Dependencies, logger zerolog.Logger, opts ...grpc.ServerOption) *Server {
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(unaryLoggingInterceptor(logger))}, opts...)
	grpcServer := grpc.NewServer(opts...)
	grpchandler.RegisterEmployeeQueryServer(grpcServer, grpchandler.NewEmployeeQueryHandler(deps.Employees))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpchandler.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		httpAddr:        cfg.HTTPAddr,
		grpcAddr:        cfg.GRPCAddr,
		shutdownTimeout: timeout,
		logger:          logger,
		echo:            newEcho(cfg, deps, logger),
		grpcServer:      grpcServer,
		health:          healthServer,
	}
}

// HTTPHandler は構築済みの HTTP ハンドラを返します。
func (s *Server) HTTPHandler() http.Handler {
	return s.echo
}

// Run は両サーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
// どちらかのサーバーが異常終了した場合はもう一方も停止してエラーを返します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	grpcLis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("listen on %s: %w", s.grpcAddr, err)
	}

	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve は与えられたリスナーで両サーバーを起動します。
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	errCh := make(chan error, 2)
	s.echo.Listener = httpLis

	go func() {
		s.logger.Info().Str("addr", httpLis.Addr().String()).Msg("HTTP server listening")
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve HTTP: %w", err)
			return
		}
		errCh <- nil
	}()

	go func() {
		s.logger.Info().Str("addr", grpcLis.Addr().String()).Msg("gRPC server listening")
		if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("serve gRPC: %w", err)
			return
		}
		errCh <- nil
	}()

	var firstErr error
	received := 0
	select {
	case <-ctx.Done():
	case firstErr = <-errCh:
		received++
	}

	s.shutdown()

	for ; received < 2; received++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) shutdown() {
	s.health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("HTTP server shutdown")
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		s.logger.Warn().Msg("gRPC graceful stop timed out; forcing stop")
		s.grpcServer.Stop()
		<-stopped
	}
	s.logger.Info().Msg("servers stopped")
}
