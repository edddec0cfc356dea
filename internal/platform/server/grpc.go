package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/payroll-api/internal/platform/logger"
)

// unaryLoggingInterceptor はリクエスト ID 付きのロガーをコンテキストに格納し、呼び出し結果を記録します。
func unaryLoggingInterceptor(base zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		reqLogger := base.With().
			Str(logFieldRequestID, uuid.NewString()).
			Str("method", info.FullMethod).
			Logger()
		ctx = logger.WithContext(ctx, reqLogger)

		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		event := reqLogger.Info()
		switch code {
		case codes.OK, codes.NotFound, codes.InvalidArgument, codes.FailedPrecondition:
		default:
			event = reqLogger.Error().Err(err)
		}
		event.Str("code", code.String()).
			Dur("latency", time.Since(start)).
			Msg("rpc completed")
		return resp, err
	}
}
