// Package install registers the merge driver in git configuration and binds
// it to the dump file through a gitattributes file.
package install

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chojs23/merge-structure-sql/internal/gitutil"
	"github.com/chojs23/merge-structure-sql/internal/log"
)

// DriverDescription is stored as merge.<driver>.name.
const DriverDescription = "Rails structure.sql merge driver"

// Options describes one installation.
type Options struct {
	Global bool
	// Program is how git should invoke the driver.
	Program     string
	DriverName  string
	FilePattern string
	// Dir is the working directory git commands run in.
	Dir string
	// Out receives progress messages.
	Out io.Writer
}

// Install adds the driver definition to git config and registers it for
// FilePattern in the attributes file. Running it again is harmless.
func Install(ctx context.Context, opts Options) error {
	logger := log.From(ctx)

	configFile, err := gitutil.ConfigFile(ctx, opts.Dir, opts.Global)
	if err != nil {
		return err
	}
	fmt.Fprintf(opts.Out, "%s: Adding the %q driver definition\n", configFile, opts.DriverName)

	section := "merge." + opts.DriverName
	if err := gitutil.ConfigSet(ctx, opts.Dir, opts.Global, section+".name", DriverDescription); err != nil {
		return err
	}
	if err := gitutil.ConfigSet(ctx, opts.Dir, opts.Global, section+".driver", shellQuote(opts.Program)+" %A %O %B"); err != nil {
		return err
	}

	attributesFile, err := AttributesFile(ctx, opts.Dir, opts.Global)
	if err != nil {
		return err
	}
	logger.Debugw("attributes file", "path", attributesFile)

	added, err := registerAttribute(attributesFile, opts.FilePattern, opts.DriverName)
	if err != nil {
		return err
	}
	if added {
		fmt.Fprintf(opts.Out, "%s: Registering the %q driver for %s\n", attributesFile, opts.DriverName, opts.FilePattern)
	}
	return nil
}

// AttributesFile returns the gitattributes file for the scope. For the
// global scope it falls back to a conventional location and records it as
// core.attributesfile when none is configured.
func AttributesFile(ctx context.Context, dir string, global bool) (string, error) {
	if !global {
		gitDir, err := gitutil.GitDir(ctx, dir)
		if err != nil {
			return "", err
		}
		return filepath.Join(gitDir, "info", "attributes"), nil
	}

	configured, ok, err := gitutil.ConfigGet(ctx, dir, true, "core.attributesfile")
	if err != nil {
		return "", err
	}
	if ok {
		return expandHome(configured)
	}

	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		xdg = "~/.config"
	}
	candidates := []struct{ dir, file string }{
		{filepath.Join(xdg, "git"), "attributes"},
		{"~", ".gitattributes"},
	}
	for _, c := range candidates {
		expanded, err := expandHome(c.dir)
		if err != nil {
			continue
		}
		if info, err := os.Stat(expanded); err != nil || !info.IsDir() {
			continue
		}
		if err := gitutil.ConfigSet(ctx, dir, true, "core.attributesfile", filepath.Join(c.dir, c.file)); err != nil {
			return "", err
		}
		return filepath.Join(expanded, c.file), nil
	}
	return "", errors.New("don't you have home?")
}

// registerAttribute appends "<pattern> merge=<driver>" to path unless an
// equivalent line is already present.
func registerAttribute(path, pattern, driver string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	existing := attributeLine(pattern, driver)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if existing.MatchString(scanner.Text()) {
			return false, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return false, err
	}
	line := pattern + " merge=" + driver + "\n"
	if size > 0 {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func attributeLine(pattern, driver string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + regexp.QuoteMeta(pattern) + `\s+(?:\S+\s+)*merge=` + regexp.QuoteMeta(driver) + `(?:\s|$)`)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Abs(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("don't you have home?")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// shellQuote quotes s for the sh -c that git uses to run merge drivers.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r == '/' || r == '-' || r == '_' || r == '.' || r == '+' || r == ':' || r == '@' ||
			('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
