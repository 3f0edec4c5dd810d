package dimensions

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-dimensions/pkg/activity"
)

func TestResolverResolveContextEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	cfg := languageConfig()
	cfg.SnapshotID = "snap-1"
	resolver := NewResolver(cfg, WithActivityHooks(activity.Hooks{capture}))

	resolver.ResolveContext(context.Background(), Input{Host: "example.com", Path: "/de/page"})
	resolver.ResolveContext(context.Background(), Input{Host: "example.com", Path: "/xx/page"})

	events := capture.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Verb != activity.VerbMatched || events[1].Verb != activity.VerbFallback {
		t.Fatalf("unexpected verbs %q, %q", events[0].Verb, events[1].Verb)
	}
	if events[0].ObjectID != "snap-1" || events[0].Channel != activity.DefaultChannel {
		t.Fatalf("unexpected event identity %+v", events[0])
	}
	if events[1].Metadata["fallback_reason"] != string(FallbackUnmatchedDimension) {
		t.Fatalf("expected fallback reason metadata, got %v", events[1].Metadata)
	}
	targets, _ := events[0].Metadata["targets"].(map[string]string)
	if targets["language"] != "de" {
		t.Fatalf("expected targets metadata, got %v", events[0].Metadata["targets"])
	}
}

func TestResolverHookFailureDoesNotAffectResult(t *testing.T) {
	capture := &activity.CaptureHook{Err: errors.New("sink down")}
	resolver := NewResolver(languageConfig(), WithActivityHooks(activity.Hooks{capture}))

	result := resolver.ResolveContext(context.Background(), Input{Path: "/de"})
	if got := result.TargetDimensions["language"]; got != "de" {
		t.Fatalf("expected de, got %q", got)
	}
}

func TestResolverActivityDisabled(t *testing.T) {
	capture := &activity.CaptureHook{}
	resolver := NewResolver(languageConfig(),
		WithActivityHooks(activity.Hooks{capture}),
		WithActivityConfig(activity.Config{Enabled: false}),
	)
	resolver.ResolveContext(context.Background(), Input{Path: "/de"})
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events when disabled")
	}
}

func TestResolverLogsResolutions(t *testing.T) {
	var events []ResolutionLogEvent
	resolver := NewResolver(languageConfig(), WithResolutionLogger(ResolutionLoggerFunc(func(event ResolutionLogEvent) {
		events = append(events, event)
	})))

	resolver.Resolve(Input{Host: "example.com", Path: "/de/page"})
	resolver.ResolveURI("https://example.com/de_x/page")

	if len(events) != 2 {
		t.Fatalf("expected 2 log events, got %d", len(events))
	}
	if events[0].Outcome != OutcomeMatched || events[0].Targets["language"] != "de" {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[1].Outcome != OutcomeFallback || events[1].FallbackReason != FallbackSegmentCountMismatch {
		t.Fatalf("unexpected second event %+v", events[1])
	}
	if !reflect.DeepEqual(events[1].Segments, []string{"de", "x"}) {
		t.Fatalf("unexpected segments %v", events[1].Segments)
	}
}

func TestResolverOwnsItsConfig(t *testing.T) {
	cfg := languageConfig()
	resolver := NewResolver(cfg)
	cfg.Dimensions[0].Presets[0].URISegment = "xx"

	if got := resolver.Resolve(Input{Path: "/de"}).TargetDimensions["language"]; got != "de" {
		t.Fatalf("expected resolver to keep its own copy, got %q", got)
	}
	copied := resolver.Config()
	copied.Dimensions[0].Default = "changed"
	if resolver.Config().Dimensions[0].Default != "en" {
		t.Fatalf("expected Config to return a copy")
	}
}

func TestNilResolverResolvesEmpty(t *testing.T) {
	var resolver *Resolver
	if !resolver.Resolve(Input{Path: "/de"}).IsEmpty() {
		t.Fatalf("expected empty result from nil resolver")
	}
	if resolver.FunctionName() != DefaultFunctionName {
		t.Fatalf("expected default function name")
	}
}

func TestTraceRoundTrip(t *testing.T) {
	resolver := NewResolver(languageMarketConfig())
	_, trace := resolver.ResolveWithTrace(Input{Host: "example.fr", Path: "/x_eu"})

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("encode trace: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("decode trace: %v", err)
	}
	if !reflect.DeepEqual(trace, decoded) {
		t.Fatalf("trace mismatch\nwant %+v\ngot  %+v", trace, decoded)
	}
}

func TestResultJSONShape(t *testing.T) {
	result := Resolve(languageConfig(), Input{Path: "/de"})
	payload, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"dimensions":{"language":["de"]},"targetDimensions":{"language":"de"}}`
	if string(payload) != want {
		t.Fatalf("expected %s, got %s", want, payload)
	}

	clone := result.Clone()
	clone.Dimensions["language"][0] = "x"
	if values, _ := result.Values("language"); values[0] != "de" {
		t.Fatalf("expected clone to be deep")
	}
	if target, ok := result.Target("language"); !ok || target != "de" {
		t.Fatalf("unexpected target %q %v", target, ok)
	}
}
