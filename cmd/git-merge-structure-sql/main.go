package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/chojs23/merge-structure-sql/internal/cli"
	"github.com/chojs23/merge-structure-sql/internal/config"
	"github.com/chojs23/merge-structure-sql/internal/log"
	"github.com/chojs23/merge-structure-sql/internal/run"
)

var version = "dev"

func main() {
	opts, err := cli.Parse(os.Args[1:])
	if err != nil {
		os.Exit(reportParseError(os.Stdout, os.Stderr, err))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cli.Name, err)
		os.Exit(1)
	}

	logger := log.New(cli.Name, os.Stderr, opts.Verbose || cfg.Verbose)
	ctx := log.With(context.Background(), logger)

	exitCode := run.Run(ctx, opts, cfg)
	logger.Sync()
	os.Exit(exitCode)
}

// reportParseError prints what a failed cli.Parse calls for and returns the
// exit status.
func reportParseError(stdout, stderr io.Writer, err error) int {
	switch {
	case errors.Is(err, cli.ErrHelp):
		fmt.Fprintln(stdout, cli.Usage())
		return 0
	case errors.Is(err, cli.ErrVersion):
		fmt.Fprintf(stdout, "%s %s\n", cli.Name, versionString())
		return 0
	}
	// A bare ErrUsage only needs the usage text.
	if !errors.Is(err, cli.ErrUsage) || errors.Unwrap(err) != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cli.Name, err)
	}
	fmt.Fprintln(stderr, cli.Usage())
	return cli.ExitUsage
}

func versionString() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return version
	}
	return info.Main.Version
}
