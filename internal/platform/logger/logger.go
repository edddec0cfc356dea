package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/payroll-api/internal/platform/config"
)

// New は設定に従って zerolog.Logger を生成します。
//
// FilePath が指定されている場合は標準出力とファイルの両方へ書き込みます。
// 返却される io.Closer はファイルを閉じるためのもので、ファイル出力が無い場合は何もしません。
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	return newWithWriter(cfg, os.Stdout)
}

func newWithWriter(cfg config.LogConfig, stdout io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var out io.Writer = stdout
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if cfg.FilePath != "" {
		file, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("logger: open %s: %w", cfg.FilePath, err)
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return l, closer, nil
}

func parseLevel(raw string) (zerolog.Level, error) {
	if raw == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logger: parse level %q: %w", raw, err)
	}
	return level, nil
}

// WithContext は ctx に l を格納します。
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// FromContext は ctx に格納された Logger を返します。未設定の場合は fallback を返します。
func FromContext(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &fallback
	}
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
