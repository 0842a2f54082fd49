package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/chojs23/merge-structure-sql/internal/cli"
	"github.com/chojs23/merge-structure-sql/internal/config"
	"github.com/chojs23/merge-structure-sql/internal/engine"
	"github.com/chojs23/merge-structure-sql/internal/gitutil"
	"github.com/chojs23/merge-structure-sql/internal/install"
	"github.com/chojs23/merge-structure-sql/internal/log"
	"github.com/chojs23/merge-structure-sql/internal/tui"
)

// Run executes one invocation and returns the process exit status.
func Run(ctx context.Context, opts cli.Options, cfg config.Config) int {
	logger := log.From(ctx)
	if cfg.Git != "" {
		gitutil.Command = cfg.Git
	}
	logger.Debugw("config", "driver", cfg.DriverName, "pattern", cfg.FilePattern, "git", gitutil.Command)

	if opts.Install != cli.InstallNone {
		err := install.Install(ctx, install.Options{
			Global:      opts.Install == cli.InstallGlobal,
			Program:     program(),
			DriverName:  cfg.DriverName,
			FilePattern: cfg.FilePattern,
			Dir:         ".",
			Out:         os.Stdout,
		})
		if err != nil {
			logger.Errorf("%v", err)
			return 1
		}
		return 0
	}

	if opts.Resolve {
		code, err := resolveFromRepo(ctx, cfg)
		if err != nil {
			if errors.Is(err, errNoConflicts) {
				logger.Infof("No conflicted schema dumps found.")
				return 0
			}
			if errors.Is(err, tui.ErrSelectorQuit) {
				return 0
			}
			logger.Errorf("%v", err)
			return 1
		}
		return code
	}

	code, err := engine.Run(ctx, os.Stdout, os.Stderr, engine.Files{
		Current: opts.CurrentPath,
		Base:    opts.BasePath,
		Other:   opts.OtherPath,
	})
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	return code
}

// program is the name git runs the driver by; it must be on PATH.
func program() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return cli.Name
	}
	return filepath.Base(os.Args[0])
}
