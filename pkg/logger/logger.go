package logger

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/trace"
)

var Log *zap.Logger

// NewLogger 构建进程级 logger。LOG_LEVEL 覆盖默认的 info 级别，
// LOG_MODE=console 切换到本地调试用的开发编码器。
func NewLogger() *zap.Logger {
	var cfg zap.Config
	if os.Getenv("LOG_MODE") == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if lvl, err := zap.ParseAtomicLevel(raw); err == nil {
			cfg.Level = lvl
		}
	}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Log = l
	return l
}

// WithTrace 从 context 中提取 trace_id 并添加到 logger
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
