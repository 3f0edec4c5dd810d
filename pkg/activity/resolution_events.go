package activity

import (
	"strings"
	"time"
)

// ObjectType is the object type carried by resolution events.
const ObjectType = "dimensions"

// Verbs emitted for each resolution outcome.
const (
	VerbMatched  = "dimensions.matched"
	VerbFallback = "dimensions.fallback"
	VerbEmpty    = "dimensions.empty"
)

// ResolutionEventInput describes a finished resolution.
type ResolutionEventInput struct {
	SnapshotID     string
	Host           string
	Path           string
	Outcome        string
	FallbackReason string
	Targets        map[string]string
	Metadata       map[string]any
	Channel        string
	OccurredAt     time.Time
}

// BuildResolutionEvent constructs the activity event for a resolution. The
// verb is derived from the outcome ("matched", "fallback" or "empty").
func BuildResolutionEvent(input ResolutionEventInput) Event {
	metadata := cloneMap(input.Metadata)
	outcome := strings.TrimSpace(input.Outcome)
	if outcome != "" {
		metadata = ensureMetadata(metadata)
		metadata["outcome"] = outcome
	}
	if input.FallbackReason != "" {
		metadata = ensureMetadata(metadata)
		metadata["fallback_reason"] = input.FallbackReason
	}
	if input.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata["snapshot_id"] = input.SnapshotID
	}
	if len(input.Targets) > 0 {
		metadata = ensureMetadata(metadata)
		targets := make(map[string]string, len(input.Targets))
		for name, value := range input.Targets {
			targets[name] = value
		}
		metadata["targets"] = targets
	}

	objectID := strings.TrimSpace(input.SnapshotID)
	if objectID == "" {
		objectID = ObjectType
	}

	return Event{
		Verb:       verbFor(outcome),
		ObjectType: ObjectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Host:       input.Host,
		Path:       input.Path,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// OutcomeOf returns the outcome encoded in an event's verb.
func OutcomeOf(event Event) string {
	return strings.TrimPrefix(event.Verb, ObjectType+".")
}

func verbFor(outcome string) string {
	switch outcome {
	case "matched":
		return VerbMatched
	case "fallback":
		return VerbFallback
	case "empty":
		return VerbEmpty
	default:
		return ""
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
