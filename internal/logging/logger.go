// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry.
const ServiceName = "fashion-etl"

// Config returns the zap configuration for development (console, colored
// levels) or production (JSON).
func Config(development bool) zap.Config {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = false
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.InitialFields = map[string]any{"service": ServiceName}
	return cfg
}

// New builds a logger from Config.
func New(development bool) (*zap.Logger, error) {
	logger, err := Config(development).Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
