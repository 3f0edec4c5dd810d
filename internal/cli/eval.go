package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	dimensions "github.com/goliatone/go-dimensions"
)

type evalOptions struct {
	uri    string
	engine string
}

func newEvalCmd(state *app) *cobra.Command {
	opts := evalOptions{engine: "expr"}
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression against the context resolved for --uri",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := dimensions.ParseInput(opts.uri)
			if err != nil {
				return err
			}
			evaluator, err := newEvaluator(opts.engine, state.resolver)
			if err != nil {
				return err
			}
			resolver := state.resolver
			if evaluator != nil {
				zl := dimensions.NewZapLogger(state.log)
				resolver = dimensions.NewResolver(resolver.Config(),
					dimensions.WithEvaluator(evaluator),
					dimensions.WithResolutionLogger(zl),
					dimensions.WithEvaluatorLogger(zl),
				)
			}
			resp, err := resolver.Evaluate(input, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp.Value)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.uri, "uri", "", "request uri or path the context is resolved for")
	fs.StringVar(&opts.engine, "engine", "expr", "expression engine: expr, cel or js")
	return cmd
}

// newEvaluator returns nil for expr so the resolver's default evaluator is used.
func newEvaluator(engine string, resolver *dimensions.Resolver) (dimensions.Evaluator, error) {
	registry := resolver.FunctionRegistry()
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "expr":
		return nil, nil
	case "cel":
		return dimensions.NewCELEvaluator(dimensions.CELWithFunctionRegistry(registry)), nil
	case "js":
		evaluator := dimensions.NewJSEvaluator(dimensions.JSWithFunctionRegistry(registry))
		if evaluator == nil {
			return nil, fmt.Errorf("js engine requires a build with the js_eval tag")
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
