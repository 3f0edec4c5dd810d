package dimensions

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError reports a failed expression together with the request it
// ran for and the resolution that produced its context. SnapshotID and
// Outcome are empty when the caller supplied the context directly.
type EvaluationError struct {
	Engine     string
	Expr       string
	Request    string
	SnapshotID string
	Outcome    Outcome
	Err        error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "dimensions: %s evaluator %s request=%s", e.Engine, describeExpression(e.Expr), e.Request)
	if e.Outcome != "" {
		fmt.Fprintf(&b, " outcome=%s", e.Outcome)
	}
	if e.SnapshotID != "" {
		fmt.Fprintf(&b, " snapshot=%s", e.SnapshotID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "dimensions:") {
		return err
	}
	return fmt.Errorf("dimensions: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, request string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Request == "" {
			evalErr.Request = request
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:  engine,
		Expr:    expr,
		Request: request,
		Err:     err,
	}
}

// annotateResolution fills the resolution fields of the first
// EvaluationError in err's chain when they are unset.
func annotateResolution(err error, snapshotID string, outcome Outcome) error {
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return err
	}
	if evalErr.SnapshotID == "" {
		evalErr.SnapshotID = snapshotID
	}
	if evalErr.Outcome == "" {
		evalErr.Outcome = outcome
	}
	return err
}
