package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/session"
)

type mutateOpts struct {
	instruction string
	docs        []string
	output      string
	noCache     bool
}

func (o *mutateOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.instruction, "instruction", "i", "", "what the model should do")
	cmd.Flags().StringSliceVarP(&o.docs, "docs", "d", nil, "source documents to send as context")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output graph file (default: overwrite input)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "bypass the response cache")
}

// diveCommand creates the dive command.
func (c *CLI) diveCommand() *cobra.Command {
	var opts mutateOpts

	cmd := &cobra.Command{
		Use:   "dive <graph.json> <node-id>",
		Short: "Add sub-concepts beneath a node",
		Long: `Ask the model for more detail beneath one node and append it to the map.

Dive never removes or changes existing nodes. Without -i, the model is asked
for a general breakdown of the concept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.runMutation(ctx, args[0], opts, "Diving into "+args[1]+"...", func(s *session.Session) (session.Result, error) {
				return s.Dive(ctx, args[1], opts.instruction)
			})
		},
	}
	opts.register(cmd)
	return cmd
}

// refineCommand creates the refine command.
func (c *CLI) refineCommand() *cobra.Command {
	var opts mutateOpts

	cmd := &cobra.Command{
		Use:   "refine <graph.json> [node-id]",
		Short: "Rework a branch, or the whole map",
		Long: `Rework part of the map according to an instruction.

With a node id, every descendant of that node is replaced by the model's new
subtree; the rest of the map is untouched. Without one, the whole map is
regenerated from the source documents (-d is required).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				return c.runMutation(ctx, args[0], opts, "Refining map...", func(s *session.Session) (session.Result, error) {
					return s.RefineGlobal(ctx, opts.instruction)
				})
			}
			return c.runMutation(ctx, args[0], opts, "Refining "+args[1]+"...", func(s *session.Session) (session.Result, error) {
				return s.Refine(ctx, args[1], opts.instruction)
			})
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) runMutation(ctx context.Context, input string, opts mutateOpts, msg string, fn func(*session.Session) (session.Result, error)) error {
	s, closeFn, err := c.loadGraphSession(ctx, input, opts.docs, opts.noCache)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := mutate(ctx, msg, func() (session.Result, error) { return fn(s) })
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = input
	}
	if err := graph.WriteGraphFile(s.Export(), output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Map updated")
	printFile(output)
	printResult(res)
	return nil
}
