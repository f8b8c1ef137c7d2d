package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/session"
	"github.com/matzehuels/conceptmap/pkg/view"
)

const defaultGraphFile = "concept-map.json"

type generateOpts struct {
	lens    string
	output  string
	save    string
	noCache bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate <file>...",
		Short: "Synthesize a concept map from research documents",
		Long: `Synthesize a concept map from research documents.

Every file is read (plain text and markdown only), combined into one source
text and sent to the model. The resulting graph is written as JSON and can be
grown with 'dive' and 'refine' or browsed with 'explore'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.lens, "prompt", "p", "", "focus the map on a question or theme")
	cmd.Flags().StringVarP(&opts.output, "output", "o", defaultGraphFile, "output graph file")
	cmd.Flags().StringVar(&opts.save, "save", "", "also save the map as a named view")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the response cache")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, files []string, opts generateOpts) error {
	logger := loggerFromContext(ctx)

	docs, err := readDocuments(files)
	if err != nil {
		return err
	}
	s, closeFn, err := c.newSession(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeFn()
	s.SetContext(docs.Combined())
	logger.Debug("documents loaded", "files", docs.Len())

	res, err := mutate(ctx, "Synthesizing concept map...", func() (session.Result, error) {
		return s.Regenerate(ctx, opts.lens)
	})
	if err != nil {
		return err
	}

	if err := graph.WriteGraphFile(s.Export(), opts.output); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}

	printSuccess("Concept map generated")
	printFile(opts.output)
	printResult(res)

	if opts.save != "" {
		if err := c.saveView(ctx, opts.save, opts.lens, s.Export()); err != nil {
			return err
		}
	}

	printNewline()
	printNextStep("Explore", "conceptmap explore "+opts.output)
	return nil
}

// saveView stores g under name in the configured view store.
func (c *CLI) saveView(ctx context.Context, name, prompt string, g graph.Graph) error {
	v, err := view.New(name, prompt, g)
	if err != nil {
		return err
	}
	store, err := c.openViews(ctx)
	if err != nil {
		return fmt.Errorf("open view store: %w", err)
	}
	defer store.Close()
	if err := store.Save(ctx, v); err != nil {
		return fmt.Errorf("save view: %w", err)
	}
	printSuccess("Saved view %s", StyleHighlight.Render(v.Name))
	printDetail("id: %s", v.ID)
	return nil
}

// mutate runs one session mutation behind a spinner.
func mutate(ctx context.Context, msg string, fn func() (session.Result, error)) (session.Result, error) {
	spinner := newSpinnerWithContext(ctx, msg)
	spinner.Start()

	res, err := fn()
	if err != nil {
		if ctx.Err() != nil {
			spinner.Stop()
			return res, ctx.Err()
		}
		spinner.StopWithError(errs.UserMessage(err))
		return res, err
	}
	spinner.Stop()
	return res, nil
}
