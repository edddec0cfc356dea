package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/payroll-api/internal/adapters/http/handler"
	"github.com/ogurasousui/payroll-api/internal/platform/config"
	"github.com/ogurasousui/payroll-api/internal/platform/logger"
)

const (
	apiPrefix         = "/api/v1"
	readyCheckTimeout = 2 * time.Second
	logFieldRequestID = "request_id"
)

func newEcho(cfg config.ServerConfig, deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewErrorHandler(log)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	if len(cfg.CORSAllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSAllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		}))
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/healthz", healthz(deps.Ready))

	api := e.Group(apiPrefix)
	handler.NewEmployeeHandler(deps.Employees).Register(api)
	handler.NewDepartmentHandler(deps.Departments, deps.Employees).Register(api)
	handler.NewJobGradeHandler(deps.JobGrades, deps.Employees).Register(api)

	return e
}

// requestLogger はリクエスト ID 付きのロガーをコンテキストに格納し、完了時にアクセスログを出力します。
func requestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			reqLogger := base.With().Str(logFieldRequestID, reqID).Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), reqLogger)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			event := reqLogger.Info()
			if status >= http.StatusInternalServerError {
				event = reqLogger.Error()
			}
			event.Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request completed")
			return nil
		}
	}
}

func healthz(ready func(context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), readyCheckTimeout)
			defer cancel()
			if err := ready(ctx); err != nil {
				logger.FromContext(c.Request().Context(), zerolog.Nop()).Warn().Err(err).Msg("readiness check failed")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
