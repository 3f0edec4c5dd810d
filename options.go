package dimensions

import "github.com/goliatone/go-dimensions/pkg/activity"

// DefaultFunctionName is the name the resolver registers under in a
// FunctionRegistry.
const DefaultFunctionName = "ofRequestUri"

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	functionName  string
	logger        ResolutionLogger
	evalLogger    EvaluatorLogger
	activityHooks activity.Hooks
	activity      activity.Config
}

func applyOptions(opts []Option) resolverConfig {
	cfg := resolverConfig{
		functionName: DefaultFunctionName,
		activity:     activity.Config{Enabled: true},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the evaluator used by Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *resolverConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a program cache for the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *resolverConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes the functions in registry to expressions
// evaluated by the resolver. The registry is cloned.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *resolverConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for expressions evaluated by the
// resolver.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *resolverConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithFunctionName changes the name the resolver is callable under.
func WithFunctionName(name string) Option {
	return func(cfg *resolverConfig) {
		if name == "" {
			return
		}
		cfg.functionName = name
	}
}

// WithResolutionLogger attaches a logger notified after every resolution.
func WithResolutionLogger(logger ResolutionLogger) Option {
	return func(cfg *resolverConfig) {
		if logger == nil {
			cfg.logger = noopResolutionLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithEvaluatorLogger attaches a logger notified after every expression
// evaluation.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *resolverConfig) {
		if logger == nil {
			cfg.evalLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evalLogger = logger
	}
}

// WithActivityConfig sets the emitter configuration (enabled flag, channel).
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *resolverConfig) {
		cfg.activity = config
	}
}
