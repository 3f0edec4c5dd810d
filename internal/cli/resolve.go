package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	dimensions "github.com/goliatone/go-dimensions"
)

type resolveOptions struct {
	trace bool
}

type traceOutput struct {
	Result dimensions.Result `json:"result"`
	Trace  dimensions.Trace  `json:"trace"`
}

func newResolveCmd(state *app) *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <uri>",
		Short: "Resolve the dimension context for a URI or path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := dimensions.ParseInput(args[0])
			if err != nil {
				return err
			}
			var out any
			if opts.trace {
				result, trace := state.resolver.ResolveWithTrace(input)
				out = traceOutput{Result: result, Trace: trace}
			} else {
				out = state.resolver.ResolveContext(cmd.Context(), input)
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "include per-dimension match details")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return err
}
