package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/chojs23/merge-structure-sql/internal/dialect"
	"github.com/chojs23/merge-structure-sql/internal/gitmerge"
	"github.com/chojs23/merge-structure-sql/internal/log"
	"github.com/chojs23/merge-structure-sql/internal/markers"
)

// Files names the three versions git hands to a merge driver (%A %O %B).
// Current is overwritten with the merge result.
type Files struct {
	Current string
	Base    string
	Other   string
}

func (f Files) paths() []string {
	return []string{f.Current, f.Base, f.Other}
}

// Rewrite applies the dialect-specific merge to the three files in place and
// returns the dialect used. The dialect is detected on Current only. When no
// dialect matches, the files are left untouched and a nil Dialect is
// returned.
func Rewrite(ctx context.Context, files Files) (dialect.Dialect, error) {
	logger := log.From(ctx)
	paths := files.paths()

	texts := make([]string, len(paths))
	var readErr *multierror.Error
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			readErr = multierror.Append(readErr, err)
			continue
		}
		texts[i] = string(data)
	}
	if readErr != nil {
		readErr.ErrorFormat = joinErrors
		return nil, readErr
	}

	d := dialect.Identify(texts[0])
	if d == nil {
		logger.Debugw("no dialect matched", "path", files.Current)
		return nil, nil
	}
	logger.Debugw("identified dialect", "dialect", d.Name(), "path", files.Current)

	dialect.Merge(d, texts)

	for i, path := range paths {
		if err := os.WriteFile(path, []byte(texts[i]), 0o644); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Run is the merge driver: it rewrites the files, then delegates to
// git merge-file, whose exit status it returns. An unsupported format is
// reported but still merged line by line.
func Run(ctx context.Context, stdout, stderr io.Writer, files Files) (int, error) {
	logger := log.From(ctx)

	d, err := Rewrite(ctx, files)
	if err != nil {
		return 1, err
	}
	if d == nil {
		logger.Warnf("Unsupported format; falling back to git-merge-file(1)")
	}

	code, err := gitmerge.MergeFile(ctx, stdout, stderr, files.Current, files.Base, files.Other)
	if err != nil {
		return 1, err
	}
	logger.Debugw("git merge-file finished", "status", code)
	return code, nil
}

// Resolution is the outcome of re-merging a path left conflicted in the
// index.
type Resolution struct {
	Dialect   dialect.Dialect
	Conflicts []markers.Block
}

// Resolve merges the three stage files like Run, but writes the result to
// mergedPath instead of files.Current.
func Resolve(ctx context.Context, files Files, mergedPath string) (Resolution, error) {
	d, err := Rewrite(ctx, files)
	if err != nil {
		return Resolution{}, err
	}

	out, _, err := gitmerge.MergeFileOutput(ctx, files.Current, files.Base, files.Other)
	if err != nil {
		return Resolution{}, err
	}

	blocks, err := markers.Scan(out)
	if err != nil {
		return Resolution{}, fmt.Errorf("scan merge result: %w", err)
	}

	if err := os.WriteFile(mergedPath, out, 0o644); err != nil {
		return Resolution{}, fmt.Errorf("write merged: %w", err)
	}
	return Resolution{Dialect: d, Conflicts: blocks}, nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
