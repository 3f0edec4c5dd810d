package dimensions

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerLevelsByOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))
	resolver := NewResolver(languageConfig(),
		WithResolutionLogger(logger),
		WithEvaluatorLogger(logger),
	)

	resolver.Resolve(Input{Host: "example.com", Path: "/de/page"})
	resolver.Resolve(Input{Host: "example.com", Path: "/xx/page"})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].Message != "dimensions resolved" {
		t.Fatalf("unexpected match entry %+v", entries[0].Entry)
	}
	if entries[0].LoggerName != "dimensions" {
		t.Fatalf("expected named logger, got %q", entries[0].LoggerName)
	}
	fallback := entries[1]
	if fallback.Level != zapcore.InfoLevel || fallback.Message != "dimensions fell back to defaults" {
		t.Fatalf("unexpected fallback entry %+v", fallback.Entry)
	}
	fields := fallback.ContextMap()
	if fields["reason"] != string(FallbackUnmatchedDimension) || fields["path"] != "/xx/page" {
		t.Fatalf("unexpected fallback fields %v", fields)
	}
}

func TestZapLoggerEvaluationFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := NewZapLogger(zap.New(core))

	logger.LogEvaluation(EvaluatorLogEvent{Engine: "expr", Expr: "ok"})
	logger.LogEvaluation(EvaluatorLogEvent{Engine: "cel", Expr: "bad(", Request: "example.com/de", Err: errors.New("syntax")})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected only the failure at warn level, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["engine"] != "cel" || fields["request"] != "example.com/de" || fields["error"] != "syntax" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestNewZapLoggerNilDiscards(t *testing.T) {
	logger := NewZapLogger(nil)
	logger.LogResolution(ResolutionLogEvent{Outcome: OutcomeMatched})
	logger.LogEvaluation(EvaluatorLogEvent{Engine: "expr"})
}
