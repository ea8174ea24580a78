// Package logger builds the zap loggers used across the service.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger, or a console logger in development.
func New(appEnv string) (*zap.Logger, error) {
	var cfg zap.Config
	if appEnv == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg.Build()
}

// NewNamed returns a logger tagged with the service name.
func NewNamed(appEnv, service string) (*zap.Logger, error) {
	log, err := New(appEnv)
	if err != nil {
		return nil, err
	}
	return log.Named(service).With(zap.String("service", service)), nil
}
