package activity

import "testing"

func TestBuildResolutionEventFallback(t *testing.T) {
	meta := map[string]any{"request_id": "rid-1"}
	input := ResolutionEventInput{
		SnapshotID:     "snap-1",
		Host:           "example.com",
		Path:           "/xx/page",
		Outcome:        "fallback",
		FallbackReason: "unmatched_dimension",
		Targets:        map[string]string{"language": "en"},
		Metadata:       meta,
	}

	event := BuildResolutionEvent(input)

	if event.Verb != VerbFallback {
		t.Fatalf("expected verb %s, got %s", VerbFallback, event.Verb)
	}
	if event.ObjectType != ObjectType || event.ObjectID != "snap-1" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.Metadata["fallback_reason"] != "unmatched_dimension" {
		t.Fatalf("expected fallback reason metadata, got %+v", event.Metadata)
	}
	if event.Metadata["outcome"] != "fallback" || event.Metadata["request_id"] != "rid-1" {
		t.Fatalf("expected outcome and caller metadata, got %+v", event.Metadata)
	}
	targets, ok := event.Metadata["targets"].(map[string]string)
	if !ok || targets["language"] != "en" {
		t.Fatalf("expected targets metadata, got %+v", event.Metadata["targets"])
	}
	if _, exists := meta["outcome"]; exists {
		t.Fatalf("expected caller metadata to stay untouched")
	}
	if OutcomeOf(event) != "fallback" {
		t.Fatalf("expected outcome fallback, got %q", OutcomeOf(event))
	}
}

func TestBuildResolutionEventDefaultsObjectID(t *testing.T) {
	event := BuildResolutionEvent(ResolutionEventInput{Outcome: "empty"})
	if event.Verb != VerbEmpty {
		t.Fatalf("expected verb %s, got %s", VerbEmpty, event.Verb)
	}
	if event.ObjectID != ObjectType {
		t.Fatalf("expected object id fallback to %q, got %q", ObjectType, event.ObjectID)
	}
	if _, ok := event.Metadata["targets"]; ok {
		t.Fatalf("expected no targets metadata for empty outcome")
	}
}

func TestBuildResolutionEventUnknownOutcome(t *testing.T) {
	event := BuildResolutionEvent(ResolutionEventInput{Outcome: "bogus"})
	if event.Verb != "" {
		t.Fatalf("expected empty verb for unknown outcome, got %q", event.Verb)
	}
}
