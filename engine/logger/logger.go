package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds configuration for the logger.
type Config struct {
	// Environment selects the encoder: "development" logs human-readable console lines,
	// anything else logs JSON.
	Environment string
	// LogLevel is one of debug, info, warn, error. Unknown values fall back to info.
	LogLevel string
	// ServiceName is attached to every entry as the "service" field.
	ServiceName string
}

// New creates a new zap logger with the given configuration.
// Panics if zap cannot build the logger, which only happens on invalid output paths.
//
// Parameters:
//   - cfg: logger configuration
//
// Returns:
//   - *zap.Logger: the configured logger
func New(cfg Config) *zap.Logger {
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	development := cfg.Environment == "development"

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	encoding := "json"
	if development {
		encoding = "console"
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config := zap.Config{
		Level:            ParseLevel(cfg.LogLevel),
		Development:      development,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	if cfg.ServiceName != "" {
		logger = logger.With(zap.String("service", cfg.ServiceName))
	}
	return logger
}

// ParseLevel converts a string log level to a zap.AtomicLevel.
//
// Parameters:
//   - level: debug, info, warn or error
//
// Returns:
//   - zap.AtomicLevel: the matching level, info when unrecognised
func ParseLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// OrNop returns l, or a no-op logger when l is nil. Components call this on their injected
// logger so a missing WithLogger option never dereferences nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
