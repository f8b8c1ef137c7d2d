package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/session"
)

type exploreOpts struct {
	viewID  string
	docs    []string
	output  string
	noCache bool
}

// exploreCommand creates the interactive explorer command.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore [graph.json]",
		Short: "Browse and grow a concept map interactively",
		Long: `Browse and grow a concept map in the terminal.

Open a graph file, or a saved view with --view. Changes are written back to
the graph file (or to -o) when you quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			if (input == "") == (opts.viewID == "") {
				return fmt.Errorf("give either a graph file or --view")
			}
			return c.runExplore(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVar(&opts.viewID, "view", "", "open a saved view instead of a file")
	cmd.Flags().StringSliceVarP(&opts.docs, "docs", "d", nil, "source documents to send as context")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "where to write changes (default: the input file)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the response cache")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts exploreOpts) error {
	var (
		s       *session.Session
		closeFn func() error
		err     error
	)
	if input != "" {
		s, closeFn, err = c.loadGraphSession(ctx, input, opts.docs, opts.noCache)
	} else {
		s, closeFn, err = c.loadViewSession(ctx, opts.viewID, opts.docs, opts.noCache)
	}
	if err != nil {
		return err
	}
	defer closeFn()

	// The TUI owns the terminal; keep log lines out of it.
	level := c.Logger.GetLevel()
	c.SetLogLevel(LogError)
	defer c.SetLogLevel(level)

	p := tea.NewProgram(NewExploreModel(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("explorer: %w", err)
	}

	m, ok := final.(ExploreModel)
	if !ok || !m.Dirty {
		return nil
	}
	output := opts.output
	if output == "" {
		output = input
	}
	if output == "" {
		printWarning("Changes not written: use -o to save a view's changes to a file")
		return nil
	}
	if err := graph.WriteGraphFile(s.Export(), output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printSuccess("Map saved")
	printFile(output)
	return nil
}

// loadViewSession opens a saved view in a new session.
func (c *CLI) loadViewSession(ctx context.Context, id string, docPaths []string, noCache bool) (*session.Session, func() error, error) {
	store, err := c.openViews(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open view store: %w", err)
	}
	defer store.Close()

	v, err := store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return c.openSession(ctx, v.Graph, docPaths, noCache)
}
