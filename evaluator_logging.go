package dimensions

import (
	"time"

	"go.uber.org/zap"
)

// EvaluatorLogEvent describes an evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Request  string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// ResolutionLogEvent describes a finished resolution for logging.
type ResolutionLogEvent struct {
	Outcome        Outcome
	FallbackReason FallbackReason
	SnapshotID     string
	Host           string
	Path           string
	Segments       []string
	Targets        map[string]string
	Duration       time.Duration
}

// ResolutionLogger records resolution events.
type ResolutionLogger interface {
	LogResolution(ResolutionLogEvent)
}

// ResolutionLoggerFunc adapts a function to ResolutionLogger.
type ResolutionLoggerFunc func(ResolutionLogEvent)

// LogResolution implements ResolutionLogger.
func (f ResolutionLoggerFunc) LogResolution(event ResolutionLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolutionLogger struct{}

func (noopResolutionLogger) LogResolution(ResolutionLogEvent) {}

// HookFailureEvent describes activity hooks that rejected a resolution event.
type HookFailureEvent struct {
	Verb       string
	SnapshotID string
	Host       string
	Path       string
	Err        error
}

// HookFailureLogger is implemented by resolution loggers that also report
// failing activity hooks.
type HookFailureLogger interface {
	LogHookFailure(HookFailureEvent)
}

// ZapLogger writes resolution and evaluation events to a zap logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger adapts l to both ResolutionLogger and EvaluatorLogger. A nil
// logger discards everything.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{logger: l.Named("dimensions")}
}

// LogResolution implements ResolutionLogger. Fallbacks log at info, matches at
// debug.
func (z *ZapLogger) LogResolution(event ResolutionLogEvent) {
	fields := []zap.Field{
		zap.String("outcome", string(event.Outcome)),
		zap.String("host", event.Host),
		zap.String("path", event.Path),
		zap.Strings("segments", event.Segments),
		zap.Any("targets", event.Targets),
		zap.Duration("duration", event.Duration),
	}
	if event.SnapshotID != "" {
		fields = append(fields, zap.String("snapshot_id", event.SnapshotID))
	}
	if event.Outcome == OutcomeFallback {
		fields = append(fields, zap.String("reason", string(event.FallbackReason)))
		z.logger.Info("dimensions fell back to defaults", fields...)
		return
	}
	z.logger.Debug("dimensions resolved", fields...)
}

// LogEvaluation implements EvaluatorLogger.
func (z *ZapLogger) LogEvaluation(event EvaluatorLogEvent) {
	fields := []zap.Field{
		zap.String("engine", event.Engine),
		zap.String("expr", event.Expr),
		zap.String("request", event.Request),
		zap.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		z.logger.Warn("expression evaluation failed", append(fields, zap.Error(event.Err))...)
		return
	}
	z.logger.Debug("expression evaluated", fields...)
}

// LogHookFailure implements HookFailureLogger.
func (z *ZapLogger) LogHookFailure(event HookFailureEvent) {
	z.logger.Warn("dimensions activity hook failed",
		zap.String("verb", event.Verb),
		zap.String("snapshot_id", event.SnapshotID),
		zap.String("host", event.Host),
		zap.String("path", event.Path),
		zap.Error(event.Err),
	)
}
