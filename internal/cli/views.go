package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/graph"
)

// viewsCommand creates the views management command.
func (c *CLI) viewsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Manage saved concept map views",
	}

	cmd.AddCommand(c.viewsListCommand())
	cmd.AddCommand(c.viewsShowCommand())
	cmd.AddCommand(c.viewsSaveCommand())
	cmd.AddCommand(c.viewsDeleteCommand())

	return cmd
}

func (c *CLI) viewsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openViews(ctx)
			if err != nil {
				return fmt.Errorf("open view store: %w", err)
			}
			defer store.Close()

			list, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No saved views")
				return nil
			}
			for _, v := range list {
				fmt.Printf("%s  %s  %s\n",
					StyleDim.Render(v.ID),
					StyleValue.Render(v.Name),
					StyleDim.Render(v.CreatedAt.Local().Format("Jan 2 15:04")+" · "+strconv.Itoa(v.Nodes)+" nodes"))
			}
			return nil
		},
	}
}

func (c *CLI) viewsShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved view, or export its graph with -o",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runViewsShow(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the view's graph to this file")
	return cmd
}

func (c *CLI) runViewsShow(ctx context.Context, id, output string) error {
	store, err := c.openViews(ctx)
	if err != nil {
		return fmt.Errorf("open view store: %w", err)
	}
	defer store.Close()

	v, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	if output != "" {
		if err := graph.WriteGraphFile(v.Graph, output); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printSuccess("Exported %s", StyleHighlight.Render(v.Name))
		printFile(output)
		return nil
	}

	printKeyValue("Name", v.Name)
	printKeyValue("ID", v.ID)
	if v.Prompt != "" {
		printKeyValue("Prompt", v.Prompt)
	}
	printKeyValue("Created", v.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
	printKeyValue("Root", graph.Root(v.Graph))
	printStats(len(v.Graph.Nodes), len(v.Graph.Edges))
	return nil
}

func (c *CLI) viewsSaveCommand() *cobra.Command {
	var name, prompt string

	cmd := &cobra.Command{
		Use:   "save <graph.json>",
		Short: "Save a graph file as a named view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			return c.saveView(cmd.Context(), name, prompt, g)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "view name")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt the map was generated with")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *CLI) viewsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openViews(ctx)
			if err != nil {
				return fmt.Errorf("open view store: %w", err)
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted view %s", args[0])
			return nil
		},
	}
}
