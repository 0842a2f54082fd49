package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Name is the program name used in usage text and messages.
const Name = "git-merge-structure-sql"

// ExitUsage is returned for command line errors (EX_USAGE).
const ExitUsage = 64

var ErrHelp = errors.New("help requested")
var ErrVersion = errors.New("version requested")
var ErrUsage = errors.New("usage error")

func Parse(args []string) (Options, error) {
	var opts Options
	var help bool
	var showVersion bool
	var install string

	fs := pflag.NewFlagSet(Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	fs.StringVar(&install, "install", "", "Enable this merge driver in Git (global|local)")
	fs.Lookup("install").NoOptDefVal = string(InstallGlobal)
	fs.BoolVar(&opts.Resolve, "resolve", false, "Re-merge conflicted dumps in the current repository")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose logging to stderr")
	fs.BoolVarP(&help, "help", "h", false, "Show help")
	fs.BoolVar(&showVersion, "version", false, "Show version")

	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Options{}, ErrHelp
		}
		return Options{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if help {
		return Options{}, ErrHelp
	}
	if showVersion {
		return Options{}, ErrVersion
	}

	if fs.Changed("install") {
		switch scope := InstallScope(strings.ToLower(strings.TrimSpace(install))); scope {
		case InstallGlobal, InstallLocal:
			opts.Install = scope
		default:
			return Options{}, fmt.Errorf("%w: --install=%s: unknown argument", ErrUsage, install)
		}
		if fs.NArg() != 0 {
			return Options{}, fmt.Errorf("%w: --install takes no file arguments", ErrUsage)
		}
		return opts, nil
	}

	if opts.Resolve {
		if fs.NArg() != 0 {
			return Options{}, fmt.Errorf("%w: --resolve takes no file arguments", ErrUsage)
		}
		return opts, nil
	}

	if fs.NArg() != 3 {
		return Options{}, ErrUsage
	}
	opts.CurrentPath = fs.Arg(0)
	opts.BasePath = fs.Arg(1)
	opts.OtherPath = fs.Arg(2)

	return opts, nil
}

func Usage() string {
	return strings.TrimSpace(`
` + Name + ` - git merge driver for db/structure.sql in a Rails project

Usage:
	  ` + Name + ` <current-file> <base-file> <other-file>
	  ` + Name + ` --install[={global|local}]
	  ` + Name + ` --resolve

Modes:
	  --install[={global|local}]  Enable this merge driver in Git (default: global)
	  --resolve                   Re-merge conflicted structure.sql files in the current repository

Options:
	  --version                   Show version
	  -v, --verbose               Verbose logging
`)
}
