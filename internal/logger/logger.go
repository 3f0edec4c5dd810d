package logger

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the CLI logger.
type Config struct {
	// Env selects the encoder: "dev" (colored console) or "prod" (JSON).
	// Default: "dev"
	Env string

	// Level is the minimum level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string

	// Output receives log lines. Default: stderr.
	Output io.Writer
}

// New builds a zap logger for cfg. It never fails; a broken configuration
// falls back to a production logger.
func New(cfg Config) *zap.Logger {
	level := ParseLevel(cfg.Level)
	prod := strings.ToLower(strings.TrimSpace(cfg.Env)) == "prod"

	if cfg.Output != nil {
		encoderCfg := devEncoderConfig()
		encoder := zapcore.NewConsoleEncoder(encoderCfg)
		if prod {
			encoderCfg = prodEncoderConfig()
			encoder = zapcore.NewJSONEncoder(encoderCfg)
		}
		core := zapcore.NewCore(encoder, zapcore.AddSync(cfg.Output), zap.NewAtomicLevelAt(level))
		return zap.New(core)
	}

	var zcfg zap.Config
	if prod {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig = prodEncoderConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig = devEncoderConfig()
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zcfg.Build(zap.AddCaller())
	if err != nil {
		l, _ = zap.NewProduction()
	}
	return l
}

func devEncoderConfig() zapcore.EncoderConfig {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	enc.EncodeCaller = zapcore.ShortCallerEncoder
	return enc
}

func prodEncoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder
	return enc
}

// ParseLevel converts a level name to a zapcore.Level, defaulting to info.
func ParseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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
