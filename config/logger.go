package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a no-op until InitLogger runs so packages can log from tests.
var Log = zap.NewNop()

// InitLogger builds the process logger: JSON in release mode, console otherwise.
func InitLogger(level, ginMode string) {
	var cfg zap.Config
	if ginMode == "release" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to build zap logger: " + err.Error())
	}
	Log = logger.With(zap.String("service", "form-builder"))
	zap.ReplaceGlobals(Log)
}

func SyncLogger() {
	_ = Log.Sync()
}
