// Package logging builds the zap loggers used across claimcheck.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/claimcheck/internal/model"
)

// New returns a JSON production logger on stderr, or a human-readable
// development logger when verbose is set.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// OrNop returns l, or a no-op logger when l is nil
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Degraded logs a stage that fell back to its default value
func Degraded(l *zap.Logger, o model.StageOutcome) {
	l.Warn("stage degraded",
		zap.String("stage", o.Stage),
		zap.String("item", o.Item),
		zap.String("kind", string(o.Kind)),
		zap.String("error", o.Error),
	)
}
