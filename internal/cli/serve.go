package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/keyplate/internal/config"
	"github.com/matzehuels/keyplate/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		logFile string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plate pipeline over HTTP",
		Long: `Serve the plate pipeline over HTTP.

Endpoints:
  GET  /healthz
  GET  /version
  POST /v1/keys?unit=19.05   body: layout text
  POST /v1/plate             body: {"layout": "...", "options": {...}}

The listen address defaults to the [server] addr of the config file. With
--log-file (or [server] log_file) the log is also written to a rotating file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, logFile, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: localhost:8080)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "also write logs to this file, rotated by size")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, logFile string, noCache bool) error {
	runner, cfg, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if addr == "" {
		addr = cfg.Server.Addr
	}
	if logFile != "" {
		cfg.Server.LogFile = logFile
	}
	if rot := rotatingLog(cfg.Server); rot != nil {
		defer rot.Close()
		c.Logger.SetOutput(io.MultiWriter(c.logOut, rot))
		defer c.Logger.SetOutput(c.logOut)
		c.ui.detail("Logging to %s", cfg.Server.LogFile)
	}

	c.ui.info("Listening on %s", StyleLink.Render("http://"+addr))
	return server.New(runner, c.Logger, cfg.Plate).ListenAndServe(ctx, addr)
}

// rotatingLog returns the log file writer configured for the server, or nil.
// With Compress set, the first rotation check starts a mill goroutine that
// Close does not stop, so it outlives runServe until the process exits.
func rotatingLog(cfg config.Server) *lumberjack.Logger {
	if cfg.LogFile == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   true,
	}
}
