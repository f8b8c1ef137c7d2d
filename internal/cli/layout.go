package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/session"
)

// expandOpts selects which part of a map is visible.
type expandOpts struct {
	expand []string
	all    bool
}

func (o *expandOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.expand, "expand", nil, "node ids to expand (the root is always expanded)")
	cmd.Flags().BoolVar(&o.all, "all", false, "expand every node")
}

func (o expandOpts) apply(s *session.Session) error {
	if o.all {
		s.ExpandAll()
		return nil
	}
	for _, id := range o.expand {
		if err := s.Expand(id); err != nil {
			return err
		}
	}
	return nil
}

// layoutFile is the JSON written by the layout command.
type layoutFile struct {
	Graph  graph.Graph   `json:"graph"`
	Layout layout.Layout `json:"layout"`
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		exp    expandOpts
	)

	cmd := &cobra.Command{
		Use:   "layout <graph.json>",
		Short: "Compute positions for the visible part of a map",
		Long: `Compute positions for the visible part of a map.

Only the root's children are visible unless more nodes are expanded with
--expand or --all. The output holds the visible subgraph and the computed
layout, including the tree and cross edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], exp, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	exp.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, exp expandOpts, output string) error {
	s, closeFn, err := c.loadGraphSession(ctx, input, nil, true)
	if err != nil {
		return err
	}
	defer closeFn()
	if err := exp.apply(s); err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	g, l := s.Layout()
	prog.done(fmt.Sprintf("Laid out %d visible nodes", len(g.Nodes)))

	data, err := json.MarshalIndent(layoutFile{Graph: g, Layout: l}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}

	if output == "" {
		output = derivedPath(input, ".layout.json")
	}
	if output == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(g.Nodes), len(g.Edges), fmt.Sprintf("%.0f×%.0f", l.Width, l.Height))
	if l.Degenerate {
		printWarning("No parentless node; laid out from the first node")
	}
	printNewline()
	printNextStep("Render", "conceptmap render "+input)
	return nil
}
