package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

var validFormats = []string{formatDOT, formatSVG, formatPDF, formatPNG}

type renderOpts struct {
	output   string
	formats  []string
	detailed bool
	scale    float64
	exp      expandOpts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2.0}

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render the visible part of a map with Graphviz",
		Long: `Render the visible part of a map as a node-link diagram.

Nodes are placed where 'layout' puts them; Graphviz only draws. Nodes with
hidden children are marked with "+". PDF and PNG output need rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input name)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", formatSVG, "comma-separated formats: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add node summaries as tooltips")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	opts.exp.register(cmd)

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(validFormats, f) {
			return fmt.Errorf("unknown format %q (valid: %s)", f, strings.Join(validFormats, ", "))
		}
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	s, closeFn, err := c.loadGraphSession(ctx, input, nil, true)
	if err != nil {
		return err
	}
	defer closeFn()
	if err := opts.exp.apply(s); err != nil {
		return err
	}

	frame := s.Frame()
	dot := nodelink.ToDOT(frame.Graph, frame.Layout, nodelink.Options{
		Detailed:  opts.detailed,
		Collapsed: frame.Collapsed,
		Geometry:  cfg.Layout,
	})

	base := opts.output
	if base == "" {
		base = derivedPath(input, "")
	}
	base = strings.TrimSuffix(base, "."+formatSVG)

	var written []string
	for _, f := range opts.formats {
		data, err := renderFormat(ctx, dot, f, opts.scale)
		if err != nil {
			return fmt.Errorf("render %s: %w", f, err)
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d visible nodes", len(frame.Graph.Nodes))
	for _, p := range written {
		printFile(p)
	}
	return nil
}

func renderFormat(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, scale)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
