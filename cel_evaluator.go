package dimensions

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

var nativeMapType = reflect.TypeOf(map[string]any{})

var celBuiltinVariables = map[string]struct{}{
	"now":     {},
	"vars":    {},
	"request": {},
	"context": {},
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression, ctx.Vars)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, program)
}

func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) run(ctx EvalContext, expression string, program *celProgram) (any, error) {
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.requestLabel(), err)
	}
	return out.Value(), nil
}

// loadOrCompile keys cached programs by expression and the declared variable
// names, since CEL checks identifiers at compile time.
func (e *celEvaluator) loadOrCompile(expression string, vars map[string]any) (*celProgram, error) {
	names := varNames(vars)
	key := expression
	if len(names) > 0 {
		key = expression + "|" + strings.Join(names, ",")
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(names)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(key, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(names []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("vars", celgo.DynType),
		celgo.Variable("request", celgo.DynType),
		celgo.Variable("context", celgo.DynType),
	}
	for _, name := range names {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(func(name ref.Val) ref.Val {
					return e.callByName(name)
				}),
			),
			celgo.Overload("call_string_dyn",
				[]*celgo.Type{celgo.StringType, celgo.DynType},
				celgo.DynType,
				celgo.BinaryBinding(func(name, arg ref.Val) ref.Val {
					return e.callByName(name, arg)
				}),
			),
			celgo.Overload("call_string_dyn_dyn",
				[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType},
				celgo.DynType,
				celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
					return e.callByName(values[0], values[1:]...)
				}),
			),
		))
		for _, name := range e.registry.Names() {
			fn := name
			overloadID := strings.ToLower(fn)
			opts = append(opts, celgo.Function(fn,
				celgo.Overload(overloadID+"_dyn",
					[]*celgo.Type{celgo.DynType},
					celgo.DynType,
					celgo.UnaryBinding(func(arg ref.Val) ref.Val {
						return e.callRegistered(fn, arg)
					}),
				),
				celgo.Overload(overloadID+"_dyn_dyn",
					[]*celgo.Type{celgo.DynType, celgo.DynType},
					celgo.DynType,
					celgo.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
						return e.callRegistered(fn, lhs, rhs)
					}),
				),
			))
		}
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx EvalContext) map[string]any {
	activation := map[string]any{
		"now":     ctx.timestamp(),
		"vars":    ctx.Vars,
		"request": ctx.requestBinding(),
		"context": ctx.Context,
	}
	for key, value := range ctx.Vars {
		if _, builtin := celBuiltinVariables[key]; builtin {
			continue
		}
		activation[key] = value
	}
	return activation
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx EvalContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled rule missing evaluator"))
	}
	ctx = ctx.withDefaults()
	program, err := r.evaluator.loadOrCompile(r.expression, ctx.Vars)
	if err != nil {
		return nil, err
	}
	return r.evaluator.run(ctx, r.expression, program)
}

func (e *celEvaluator) callByName(name ref.Val, args ...ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("dimensions: call name must be string")
	}
	return e.callRegistered(fn, args...)
}

func (e *celEvaluator) callRegistered(name string, values ...ref.Val) ref.Val {
	if e.registry == nil {
		return types.NewErr("dimensions: function registry not configured")
	}
	args := make([]any, 0, len(values))
	for _, val := range values {
		args = append(args, celNative(val))
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

func celNative(val ref.Val) any {
	if _, ok := val.(traits.Mapper); ok {
		if native, err := val.ConvertToNative(nativeMapType); err == nil {
			return native
		}
	}
	return val.Value()
}

func varNames(vars map[string]any) []string {
	if len(vars) == 0 {
		return nil
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		if _, builtin := celBuiltinVariables[name]; builtin {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
