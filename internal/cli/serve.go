package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/internal/metrics"
	"github.com/matzehuels/conceptmap/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the concept map HTTP API",
		Long: `Serve the concept map HTTP API used by the browser front end.

The server owns a single in-memory session. Prometheus metrics are exposed
at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			s, closeFn, err := c.newSession(ctx, noCache)
			if err != nil {
				return err
			}
			defer closeFn()

			views, err := c.openViews(ctx)
			if err != nil {
				return fmt.Errorf("open view store: %w", err)
			}
			defer views.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)
			m.Install()

			srv := server.New(server.Options{
				Session:     s,
				Views:       views,
				Logger:      c.Logger,
				CORSOrigins: cfg.Server.CORSOrigins,
				Metrics:     m,
				Gatherer:    reg,
			})
			printInfo("Serving on %s", StyleHighlight.Render("http://"+addr))
			printDetail("views: %s · model: %s", cfg.Views.Backend, cfg.Oracle.Model)
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")

	return cmd
}
