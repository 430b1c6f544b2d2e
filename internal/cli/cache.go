package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyplate/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// localCacheDir returns the file cache directory from the config, falling
// back to the XDG default.
func (c *CLI) localCacheDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layouts, plates and artifacts",
		Long: `Clear all cached layouts, plates and artifacts from the file cache.

Entries in a redis cache expire on their own and are not touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.localCacheDir()
			if err != nil {
				return err
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				c.ui.info("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			c.ui.success("Cleared %d cached entries", count)
			c.ui.detail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.localCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, dir)
			return nil
		},
	}
}
