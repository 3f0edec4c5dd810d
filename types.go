package dimensions

import "time"

// Preset maps a URI segment or a resolution host onto one or more dimension
// values. Empty URISegment or ResolutionHost means the matcher is unset.
type Preset struct {
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	Label          string   `json:"label,omitempty" yaml:"label,omitempty"`
	URISegment     string   `json:"uriSegment,omitempty" yaml:"uriSegment,omitempty"`
	ResolutionHost string   `json:"resolutionHost,omitempty" yaml:"resolutionHost,omitempty"`
	Values         []string `json:"values" yaml:"values"`
}

// Dimension is one named axis of content variation.
type Dimension struct {
	Name          string   `json:"name" yaml:"name"`
	Label         string   `json:"label,omitempty" yaml:"label,omitempty"`
	Default       string   `json:"default" yaml:"default"`
	DefaultPreset string   `json:"defaultPreset,omitempty" yaml:"defaultPreset,omitempty"`
	Presets       []Preset `json:"presets" yaml:"presets"`

	// removedPresets names presets set to null in this layer; MergeConfigs
	// drops them from weaker layers.
	removedPresets []string
}

// Config is the ordered set of configured dimensions. Position matters: the
// Nth dimension is matched against the Nth URI segment.
type Config struct {
	Dimensions []Dimension
	SnapshotID string
}

// Input carries the request host and path a resolution runs against.
type Input struct {
	Host string `json:"host"`
	Path string `json:"path"`
}

// Result holds the resolved value lists per dimension plus the target value
// (first entry) per dimension. The zero Result is the empty context returned
// when no dimensions are configured.
type Result struct {
	Dimensions       map[string][]string `json:"dimensions,omitempty"`
	TargetDimensions map[string]string   `json:"targetDimensions,omitempty"`
}

// Outcome names how a resolution was produced.
type Outcome string

const (
	OutcomeMatched  Outcome = "matched"
	OutcomeFallback Outcome = "fallback"
	OutcomeEmpty    Outcome = "empty"
)

// FallbackReason explains why segment/host matching was discarded.
type FallbackReason string

const (
	FallbackNone                 FallbackReason = ""
	FallbackSegmentCountMismatch FallbackReason = "segment_count_mismatch"
	FallbackUnmatchedDimension   FallbackReason = "unmatched_dimension"
)

// Response stores the value produced by an evaluator.
type Response struct {
	Value any
}

// EvalContext carries inputs needed when evaluating a template expression.
type EvalContext struct {
	Request *Input
	Now     *time.Time
	Vars    map[string]any
	Context map[string]any
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx EvalContext) withDefaultMaps() EvalContext {
	if ctx.Vars == nil {
		ctx.Vars = map[string]any{}
	}
	if ctx.Context == nil {
		ctx.Context = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) withDefaults() EvalContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

// requestLabel identifies the request in errors and log events.
func (ctx EvalContext) requestLabel() string {
	if ctx.Request == nil {
		return "none"
	}
	if ctx.Request.Host == "" {
		return ctx.Request.Path
	}
	return ctx.Request.Host + ctx.Request.Path
}

func (ctx EvalContext) requestBinding() map[string]any {
	if ctx.Request == nil {
		return map[string]any{"host": "", "path": ""}
	}
	return map[string]any{
		"host": ctx.Request.Host,
		"path": ctx.Request.Path,
	}
}

// Evaluator executes expressions against an evaluation context.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}
