package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/topicbus/internal/config"
)

// ParseLogLevel parses a level name. Unknown names yield info.
func ParseLogLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ValidLogLevel reports whether s names a supported level.
func ValidLogLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// NewLogger builds a zap logger from logging.level and logging.format.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	switch format := cfg.String(config.KeyLogFormat, "console"); format {
	case "json":
		zcfg = zap.NewProductionConfig()
	case "console":
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Development = false
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", ErrConfig, format)
	}

	zcfg.Level = zap.NewAtomicLevelAt(ParseLogLevel(cfg.String(config.KeyLogLevel, "info")))
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
