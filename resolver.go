package dimensions

import (
	"context"
	"time"

	"github.com/goliatone/go-dimensions/pkg/activity"
)

// Resolver resolves dimension contexts against an immutable configuration.
// It is safe for concurrent use.
type Resolver struct {
	config  Config
	cfg     resolverConfig
	emitter *activity.Emitter
	evaluatorState
}

// NewResolver returns a Resolver over a private copy of config.
func NewResolver(config Config, opts ...Option) *Resolver {
	cfg := applyOptions(opts)
	return &Resolver{
		config:  config.Clone(),
		cfg:     cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, cfg.activity),
	}
}

// Config returns a copy of the resolver configuration.
func (r *Resolver) Config() Config {
	if r == nil {
		return Config{}
	}
	return r.config.Clone()
}

// FunctionName returns the name the resolver registers under.
func (r *Resolver) FunctionName() string {
	if r == nil || r.cfg.functionName == "" {
		return DefaultFunctionName
	}
	return r.cfg.functionName
}

// Resolve returns the dimension context for input.
func (r *Resolver) Resolve(input Input) Result {
	result, _ := r.resolve(input, false)
	return result
}

// ResolveWithTrace returns the dimension context for input together with
// the per-dimension match details.
func (r *Resolver) ResolveWithTrace(input Input) (Result, Trace) {
	return r.resolve(input, true)
}

// ResolveContext behaves like Resolve and additionally notifies the
// configured activity hooks. Hook failures never affect the result; they are
// reported to the resolution logger when it implements HookFailureLogger.
func (r *Resolver) ResolveContext(ctx context.Context, input Input) Result {
	result, trace := r.resolve(input, false)
	if r == nil || !r.emitter.Enabled() {
		return result
	}
	event := activity.BuildResolutionEvent(activity.ResolutionEventInput{
		SnapshotID:     trace.SnapshotID,
		Host:           input.Host,
		Path:           input.Path,
		Outcome:        string(trace.Outcome),
		FallbackReason: string(trace.FallbackReason),
		Targets:        result.TargetDimensions,
	})
	if err := r.emitter.Emit(ctx, event); err != nil {
		if logger, ok := r.resolutionLogger().(HookFailureLogger); ok {
			logger.LogHookFailure(HookFailureEvent{
				Verb:       event.Verb,
				SnapshotID: trace.SnapshotID,
				Host:       input.Host,
				Path:       input.Path,
				Err:        err,
			})
		}
	}
	return result
}

// ResolveURI parses raw (an absolute URI or a bare path) and resolves it.
// Unparseable input resolves like a request without host or path.
func (r *Resolver) ResolveURI(raw string) Result {
	input, _ := ParseInput(raw)
	return r.Resolve(input)
}

func (r *Resolver) resolve(input Input, withTrace bool) (Result, Trace) {
	if r == nil {
		return Result{}, Trace{Input: input, Outcome: OutcomeEmpty}
	}
	start := time.Now()
	result, trace := resolve(r.config, input, withTrace)
	r.resolutionLogger().LogResolution(ResolutionLogEvent{
		Outcome:        trace.Outcome,
		FallbackReason: trace.FallbackReason,
		SnapshotID:     trace.SnapshotID,
		Host:           input.Host,
		Path:           input.Path,
		Segments:       trace.Segments,
		Targets:        result.TargetDimensions,
		Duration:       time.Since(start),
	})
	return result, trace
}

func (r *Resolver) resolutionLogger() ResolutionLogger {
	if r.cfg.logger != nil {
		return r.cfg.logger
	}
	return noopResolutionLogger{}
}

func (r *Resolver) evaluatorLogger() EvaluatorLogger {
	if r.cfg.evalLogger != nil {
		return r.cfg.evalLogger
	}
	return noopEvaluatorLogger{}
}
