package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type queryNameContextKey struct{}

type queryStartContextKey struct{}

type queryStart struct {
	name  string
	start time.Time
}

// WithQueryName はメトリクスとログに用いるクエリ名を ctx に設定します。
func WithQueryName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, queryNameContextKey{}, name)
}

func queryNameFromContext(ctx context.Context, sql string) string {
	if name, ok := ctx.Value(queryNameContextKey{}).(string); ok && name != "" {
		return name
	}
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

// QueryTracer はクエリの所要時間を Prometheus のヒストグラムへ記録し、debug レベルでログ出力する pgx.QueryTracer です。
type QueryTracer struct {
	duration *prometheus.HistogramVec
	logger   zerolog.Logger
	now      func() time.Time
}

// NewQueryTracer は QueryTracer を生成し、reg にヒストグラムを登録します。
func NewQueryTracer(reg prometheus.Registerer, logger zerolog.Logger) (*QueryTracer, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "payroll",
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Latency distribution for PostgreSQL queries broken down by query name and result.",
		Buckets: []float64{
			0.0005, 0.001, 0.002, 0.005,
			0.01, 0.02, 0.05, 0.1,
			0.2, 0.5, 1, 2,
		},
	}, []string{"query", "result"})

	if reg != nil {
		if err := reg.Register(duration); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
			existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				return nil, err
			}
			duration = existing
		}
	}

	return &QueryTracer{duration: duration, logger: logger, now: time.Now}, nil
}

// TraceQueryStart implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartContextKey{}, queryStart{
		name:  queryNameFromContext(ctx, data.SQL),
		start: t.now(),
	})
}

// TraceQueryEnd implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qs, ok := ctx.Value(queryStartContextKey{}).(queryStart)
	if !ok {
		return
	}

	elapsed := t.now().Sub(qs.start)
	result := "ok"
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		result = "error"
	}

	t.duration.WithLabelValues(qs.name, result).Observe(elapsed.Seconds())

	event := t.logger.Debug()
	if result == "error" {
		event = t.logger.Warn().Err(data.Err)
	}
	event.
		Str("query", qs.name).
		Dur("elapsed", elapsed).
		Int64("rows", data.CommandTag.RowsAffected()).
		Msg("postgres query")
}
