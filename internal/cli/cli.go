package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/keyplate/internal/config"
	"github.com/matzehuels/keyplate/pkg/buildinfo"
	"github.com/matzehuels/keyplate/pkg/cache"
	"github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/observability"
	"github.com/matzehuels/keyplate/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "keyplate"

	// stdinArg selects standard input as the layout source.
	stdinArg = "-"
)

// Log levels for New.
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
	logOut io.Writer

	// ConfigPath overrides the default config file location.
	ConfigPath string

	verbose bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer // spinner and status lines
	ui     *printer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: newLogger(w, level),
		logOut: w,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	c.setStderr(os.Stderr)
	return c
}

func (c *CLI) setStderr(w io.Writer) {
	c.stderr = w
	c.ui = &printer{w: w}
}

// SetLogLevel updates the logger's level. At debug level every pipeline,
// cache and HTTP event is also logged through the observability hooks.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Keyplate turns keyboard layouts into plate geometry",
		Long: `Keyplate interprets keyboard-layout-editor row fragments and derives the
switch plate for them: key placements in millimetres, the plate outline, one
switch cutout per key and stabilizer cutouts for long keys.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/keyplate/config.toml)")

	// Register all subcommands
	root.AddCommand(c.keysCommand())
	root.AddCommand(c.plateCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the config file named by --config or the default path.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", c.ConfigPath, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use from the config file.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	store, err := c.newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, config.Config{}, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(store, keyer, c.Logger), cfg, nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && cfg.Dir == "" && (cfg.Backend == "" || cfg.Backend == cache.BackendFile) {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, cfg.CacheOptions(dir))
	if stderrors.Is(err, cache.ErrUnavailable) {
		c.ui.warning("Cache unavailable, continuing without it: %v", err)
		return cache.NewNullCache(), nil
	}
	return store, err
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/keyplate/).
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

// =============================================================================
// Input / Output Helpers
// =============================================================================

// readLayout reads layout text from path, or from stdin when path is "-".
func (c *CLI) readLayout(path string) (string, error) {
	if path == stdinArg {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s not found", path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// outputPath derives "<input minus extension><suffix>" when output is empty.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + suffix
}

// writeOutput writes data to path, or to the CLI's stdout when path is "-".
func (c *CLI) writeOutput(path string, data []byte) error {
	if path == stdinArg {
		_, err := c.stdout.Write(data)
		return err
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// describeError adds the offending layout fragment to layout errors.
func describeError(err error) error {
	frag := errors.FragmentOf(err)
	if frag == "" {
		return err
	}
	return fmt.Errorf("%w\n  in: %s", err, truncate(frag, 200))
}
