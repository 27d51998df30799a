package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relplace/pkg/buildinfo"
	"github.com/matzehuels/relplace/pkg/cache"
	"github.com/matzehuels/relplace/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "relplace"

	// defaultSwaps is the number of swap proposals the place command
	// exercises by default.
	defaultSwaps = 1000
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// CacheScope separates cache entries of different users or pipelines
	// sharing one cache directory. Empty means unscoped.
	CacheScope string
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
		Use:          appName,
		Short:        "relplace places FPGA designs under relative placement constraints",
		Long:         `relplace builds rigid macros from "block A has block B on its side" declarations, finds a legal initial placement for them and checks that swap proposals keep every macro intact.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.CacheScope, "cache-scope", "", "namespace for cached placements (e.g. ci:nightly)")

	// Register all subcommands
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.seedsCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, c.keyer(), c.Logger), nil
}

// keyer returns the cache keyer for the configured scope, or nil for the
// runner's default.
func (c *CLI) keyer() cache.Keyer {
	if c.CacheScope == "" {
		return nil
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.CacheScope+":")
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/relplace/).
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

// defaultOutput derives the placement file name from the design path:
// "designs/counter.toml" becomes "counter.placement.json".
func defaultOutput(designPath string) string {
	base := filepath.Base(designPath)
	return base[:len(base)-len(filepath.Ext(base))] + ".placement.json"
}
