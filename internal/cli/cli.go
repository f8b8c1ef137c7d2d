package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/internal/config"
	"github.com/matzehuels/conceptmap/pkg/buildinfo"
	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/document"
	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/oracle"
	"github.com/matzehuels/conceptmap/pkg/session"
	"github.com/matzehuels/conceptmap/pkg/view"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "conceptmap"

// redisCachePrefix namespaces oracle responses when they live in Redis.
const redisCachePrefix = "conceptmap:oracle:"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Conceptmap turns research documents into an explorable concept map",
		Long: `Conceptmap asks a language model to synthesize a hierarchical concept map
from research documents, then lets you grow it one node at a time: dive into a
concept for more detail, refine a branch, undo, and save named views.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/conceptmap/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.diveCommand())
	root.AddCommand(c.refineCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.viewsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// newOracle builds the configured oracle, wrapped in the response cache
// when enabled. --no-cache swaps in a null cache so every call reaches the
// model.
func (c *CLI) newOracle(ctx context.Context, noCache bool) (oracle.Oracle, func() error, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	ac := cfg.AnthropicConfig()
	ac.Logger = c.Logger
	var o oracle.Oracle = oracle.NewAnthropic(ac)

	if !cfg.Oracle.Cache {
		return o, func() error { return nil }, nil
	}
	if noCache {
		return oracle.NewCached(o, cache.NewNullCache(), cache.TTLOracle, c.Logger), func() error { return nil }, nil
	}
	rc, err := c.newResponseCache(ctx, cfg)
	if err != nil {
		c.Logger.Warn("response cache unavailable", "err", err)
		return o, func() error { return nil }, nil
	}
	return oracle.NewCached(o, rc, cache.TTLOracle, c.Logger), rc.Close, nil
}

// newResponseCache opens the oracle cache backend.
func (c *CLI) newResponseCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.Oracle.CacheBackend == config.BackendRedis {
		client, err := c.dialRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache(client, redisCachePrefix), nil
	}
	return newCache()
}

func (c *CLI) dialRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	return cache.DialRedis(ctx, cache.RedisOptions{
		Addr:     cfg.Views.RedisAddr,
		Password: cfg.Views.RedisPassword.Value(),
		DB:       cfg.Views.RedisDB,
	})
}

// newSession creates a session over a fresh oracle.
func (c *CLI) newSession(ctx context.Context, noCache bool) (*session.Session, func() error, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	o, closeFn, err := c.newOracle(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	s := session.New(o, session.Options{Logger: c.Logger, Layout: cfg.Layout})
	return s, closeFn, nil
}

// openViews opens the configured view store.
func (c *CLI) openViews(ctx context.Context) (view.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	vc := cfg.Views
	switch vc.Backend {
	case config.BackendMemory:
		return view.NewMemoryStore(), nil
	case config.BackendRedis:
		client, err := c.dialRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return view.NewRedisStore(client), nil
	case config.BackendMongo:
		return view.DialMongo(ctx, vc.MongoURI.Value(), vc.MongoDatabase)
	default:
		return view.NewFileStore(vc.Dir)
	}
}

func newCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/conceptmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// derivedPath swaps the extension of input for suffix: map.json → map.layout.json.
func derivedPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// =============================================================================
// Input Helpers
// =============================================================================

// readDocuments extracts every file into one collection.
func readDocuments(paths []string) (*document.Collection, error) {
	docs := document.NewCollection()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		d, err := document.Extract(p, data)
		if err != nil {
			return nil, err
		}
		docs.Add(d)
	}
	return docs, nil
}

// loadGraphSession reads a graph file into a new session.
func (c *CLI) loadGraphSession(ctx context.Context, path string, docPaths []string, noCache bool) (*session.Session, func() error, error) {
	g, err := graph.ReadGraphFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	return c.openSession(ctx, g, docPaths, noCache)
}

// openSession loads g into a new session. The session gets source context
// from docPaths when any are given.
func (c *CLI) openSession(ctx context.Context, g graph.Graph, docPaths []string, noCache bool) (*session.Session, func() error, error) {
	var docs *document.Collection
	if len(docPaths) > 0 {
		var err error
		if docs, err = readDocuments(docPaths); err != nil {
			return nil, nil, err
		}
	}

	s, closeFn, err := c.newSession(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Load(g); err != nil {
		closeFn()
		return nil, nil, err
	}
	if docs != nil {
		s.SetContext(docs.Combined())
	}
	return s, closeFn, nil
}
