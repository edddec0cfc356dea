package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/payroll-api/internal/adapters/repository/postgres"
	"github.com/ogurasousui/payroll-api/internal/core/department"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
	"github.com/ogurasousui/payroll-api/internal/core/jobgrade"
	"github.com/ogurasousui/payroll-api/internal/platform/config"
	pg "github.com/ogurasousui/payroll-api/internal/platform/db/postgres"
	"github.com/ogurasousui/payroll-api/internal/platform/logger"
	"github.com/ogurasousui/payroll-api/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := config.LoadDotEnv(); err != nil {
		bootLog.Fatal().Err(err).Msg("failed to load .env")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to initialize logger")
	}
	defer closer.Close()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		_ = closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	tracer, err := pg.NewQueryTracer(prometheus.DefaultRegisterer, log)
	if err != nil {
		return err
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database, tracer)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	departmentRepo := postgres.NewDepartmentRepository(dbPool)
	jobGradeRepo := postgres.NewJobGradeRepository(dbPool)

	employeeSvc := employee.NewService(employeeRepo, txManager, employee.Options{
		DefaultPageSize:    cfg.API.DefaultPageSize,
		MaxPageSize:        cfg.API.MaxPageSize,
		DefaultRecentCount: cfg.API.RecentDefaultCount,
	})
	departmentSvc := department.NewService(departmentRepo, employeeRepo, txManager)
	jobGradeSvc := jobgrade.NewService(jobGradeRepo, employeeRepo, txManager)

	srv := server.New(cfg.Server, server.Dependencies{
		Employees:   employeeSvc,
		Departments: departmentSvc,
		JobGrades:   jobGradeSvc,
		Gatherer:    prometheus.DefaultGatherer,
		Ready:       dbPool.Ping,
	}, log)

	log.Info().
		Str("http_addr", cfg.Server.HTTPAddr).
		Str("grpc_addr", cfg.Server.GRPCAddr).
		Msg("starting payroll api")

	return srv.Run(ctx)
}
