package dimensions

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrNoEvaluator = errors.New("dimensions: evaluator not configured")

// Evaluate resolves input and executes expr with the resolved context bound
// as "context" and the request bound as "request".
func (r *Resolver) Evaluate(input Input, expr string) (Response, error) {
	return r.EvaluateWith(EvalContext{Request: &input}, expr)
}

// EvaluateWith executes expr against ctx. When ctx.Context is nil and a
// request is present, the request is resolved and its context bound.
func (r *Resolver) EvaluateWith(ctx EvalContext, expr string) (Response, error) {
	if r == nil {
		return Response{}, ErrNoEvaluator
	}
	if expr == "" {
		return Response{}, fmt.Errorf("dimensions: expression must not be empty")
	}
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return Response{}, err
	}
	var (
		outcome    Outcome
		snapshotID string
	)
	if ctx.Context == nil && ctx.Request != nil {
		result, trace := r.resolve(*ctx.Request, false)
		ctx.Context = result.AsMap()
		outcome, snapshotID = trace.Outcome, trace.SnapshotID
	}
	ctx = ctx.withDefaults()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.requestLabel(), evalErr)
	if outcome != "" {
		evalErr = annotateResolution(evalErr, snapshotID, outcome)
	}
	r.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Request:  ctx.requestLabel(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return Response{}, evalErr
	}
	return Response{Value: value}, nil
}

// FunctionRegistry returns a registry holding the configured custom
// functions plus the resolver function under FunctionName.
func (r *Resolver) FunctionRegistry() *FunctionRegistry {
	registry := r.cfg.functions.Clone()
	if registry == nil {
		registry = NewFunctionRegistry()
	}
	if !registry.Has(r.FunctionName()) {
		_ = r.Register(registry)
	}
	return registry
}

func (r *Resolver) resolveEvaluator() (Evaluator, error) {
	r.evalOnce.Do(func() {
		if r.cfg.evaluator != nil {
			r.defaultEvaluator = r.cfg.evaluator
			return
		}
		exprOpts := []ExprEvaluatorOption{
			ExprWithFunctionRegistry(r.FunctionRegistry()),
		}
		if r.cfg.programCache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(r.cfg.programCache))
		}
		r.defaultEvaluator = NewExprEvaluator(exprOpts...)
	})
	if r.defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	return r.defaultEvaluator, nil
}

type evaluatorState struct {
	evalOnce         sync.Once
	defaultEvaluator Evaluator
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*dimensions.exprEvaluator":
		return "expr"
	case "*dimensions.celEvaluator":
		return "cel"
	case "*dimensions.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
