package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/matzehuels/keyplate/internal/cli"
	"github.com/matzehuels/keyplate/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		if stderrors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for input the user can fix (bad flags, malformed or empty
// layouts) and 1 for everything else.
func exitCode(err error) int {
	code := errors.GetCode(err)
	switch {
	case code == errors.ErrCodeMalformedLayout, code == errors.ErrCodeNoKeys:
		return 2
	case strings.HasPrefix(string(code), "INVALID_"):
		return 2
	default:
		return 1
	}
}
