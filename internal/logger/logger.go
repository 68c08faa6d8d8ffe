package logger

import (
	"go.uber.org/zap"
)

// New builds the production zap logger used across the service.
func New(level string) (*zap.Logger, error) {
	conf := zap.NewProductionConfig()

	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	conf.Level = atomicLevel
	conf.DisableStacktrace = true

	return conf.Build(zap.AddCaller())
}

// Must is New for startup code that cannot continue without a logger.
func Must(level string) *zap.Logger {
	zapLogger, err := New(level)
	if err != nil {
		panic(err)
	}
	return zapLogger
}
