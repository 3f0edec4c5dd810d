package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event describes a resolution that can be fanned out to hooks.
type Event struct {
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	Host       string
	Path       string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// NotifyError reports the hooks that rejected a resolution event.
type NotifyError struct {
	Verb   string
	Path   string
	Failed int
	Total  int
	Err    error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("activity: %d of %d hooks failed for %s %s: %v", e.Failed, e.Total, e.Verb, e.Path, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// Notify forwards the event to all hooks. Failures are collected into a
// *NotifyError; events missing a verb or object type are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		errs  []error
		total int
	)
	for _, hook := range h {
		if hook == nil {
			continue
		}
		total++
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &NotifyError{
		Verb:   normalized.Verb,
		Path:   normalized.Path,
		Failed: len(errs),
		Total:  total,
		Err:    errors.Join(errs...),
	}
}

// NormalizeEvent trims whitespace, clones metadata, and ensures a timestamp is present.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.ObjectType = strings.TrimSpace(event.ObjectType)
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.Host = strings.TrimSpace(event.Host)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
