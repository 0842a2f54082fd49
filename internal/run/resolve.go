package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chojs23/merge-structure-sql/internal/config"
	"github.com/chojs23/merge-structure-sql/internal/dialect"
	"github.com/chojs23/merge-structure-sql/internal/engine"
	"github.com/chojs23/merge-structure-sql/internal/gitutil"
	"github.com/chojs23/merge-structure-sql/internal/log"
	"github.com/chojs23/merge-structure-sql/internal/tui"
)

var errNoConflicts = errors.New("no conflicted schema dumps found")

// maxStatus mirrors git merge-file, which caps its conflict count at 127.
const maxStatus = 127

func resolveFromRepo(ctx context.Context, cfg config.Config) (int, error) {
	logger := log.From(ctx)

	cwd, err := os.Getwd()
	if err != nil {
		return 0, fmt.Errorf("get working directory: %w", err)
	}
	repoRoot, err := gitutil.RepoRoot(ctx, cwd)
	if err != nil {
		return 0, err
	}
	scope, err := filepath.Rel(repoRoot, cwd)
	if err != nil {
		scope = "."
	}

	unmerged, err := gitutil.ListUnmergedFiles(ctx, repoRoot, filepath.ToSlash(scope))
	if err != nil {
		return 0, err
	}
	var paths []string
	for _, p := range unmerged {
		if matchesPattern(cfg.FilePattern, p) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return 0, errNoConflicts
	}

	candidates := buildCandidates(ctx, repoRoot, paths)
	selected, err := selectCandidate(ctx, candidates)
	if err != nil {
		return 0, err
	}
	logger.Debugw("resolving", "path", selected)

	ours, err := gitutil.ShowStage(ctx, repoRoot, 2, selected)
	if err != nil {
		return 0, fmt.Errorf("missing ours stage for %s: %w", selected, err)
	}
	theirs, err := gitutil.ShowStage(ctx, repoRoot, 3, selected)
	if err != nil {
		return 0, fmt.Errorf("missing theirs stage for %s: %w", selected, err)
	}
	base, err := gitutil.ShowStage(ctx, repoRoot, 1, selected)
	if err != nil {
		logger.Warnf("base stage missing for %s; merging against an empty base", selected)
		base = nil
	}

	files, cleanup, err := writeTempStages(ours, base, theirs)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	res, err := engine.Resolve(ctx, files, filepath.Join(repoRoot, filepath.FromSlash(selected)))
	if err != nil {
		return 0, err
	}
	if res.Dialect == nil {
		logger.Warnf("%s: unsupported format; merged with git-merge-file(1)", selected)
	}
	if len(res.Conflicts) == 0 {
		logger.Infof("%s: merged cleanly; review it and git add it", selected)
		return 0, nil
	}

	ranges := make([]string, len(res.Conflicts))
	for i, block := range res.Conflicts {
		ranges[i] = fmt.Sprintf("%d-%d", block.StartLine, block.EndLine)
	}
	logger.Warnf("%s: %d conflict(s) remain at lines %s", selected, len(res.Conflicts), strings.Join(ranges, ", "))
	return min(len(res.Conflicts), maxStatus), nil
}

// matchesPattern applies the gitattributes rule: a pattern without a slash
// matches the base name at any depth, otherwise the repo-relative path.
func matchesPattern(pattern, p string) bool {
	target := path.Base(p)
	if strings.Contains(pattern, "/") {
		target = p
		pattern = strings.TrimPrefix(pattern, "/")
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}

func buildCandidates(ctx context.Context, repoRoot string, paths []string) []tui.DumpCandidate {
	candidates := make([]tui.DumpCandidate, 0, len(paths))
	for _, p := range paths {
		candidate := tui.DumpCandidate{Path: p}
		if ours, err := gitutil.ShowStage(ctx, repoRoot, 2, p); err == nil {
			if d := dialect.Identify(string(ours)); d != nil {
				candidate.Dialect = d.Name()
			}
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

func selectCandidate(ctx context.Context, candidates []tui.DumpCandidate) (string, error) {
	if len(candidates) == 1 {
		return candidates[0].Path, nil
	}
	if isInteractiveTTY() {
		return tui.SelectDump(ctx, candidates)
	}
	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.Path
	}
	return selectPath(os.Stdin, os.Stdout, paths)
}

func selectPath(in io.Reader, out io.Writer, paths []string) (string, error) {
	if len(paths) == 1 {
		return paths[0], nil
	}

	fmt.Fprintln(out, "Conflicted schema dumps:")
	for i, p := range paths {
		fmt.Fprintf(out, "  %d) %s\n", i+1, p)
	}

	reader := bufio.NewReader(in)
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(out, "Select a file to merge [1-%d]: ", len(paths))
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return "", fmt.Errorf("read selection: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx, convErr := strconv.Atoi(line)
		if convErr != nil || idx < 1 || idx > len(paths) {
			fmt.Fprintln(out, "Invalid selection.")
			continue
		}
		return paths[idx-1], nil
	}

	return "", fmt.Errorf("invalid selection")
}

func isInteractiveTTY() bool {
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

func isTTY(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// writeTempStages stores the index stages where the merge driver expects
// its three arguments. The returned cleanup removes them.
func writeTempStages(ours, base, theirs []byte) (engine.Files, func(), error) {
	dir, err := os.MkdirTemp("", "merge-structure-sql-*")
	if err != nil {
		return engine.Files{}, nil, fmt.Errorf("create stage directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	files := engine.Files{
		Current: filepath.Join(dir, "ours"),
		Base:    filepath.Join(dir, "base"),
		Other:   filepath.Join(dir, "theirs"),
	}
	stages := []struct {
		path string
		data []byte
	}{
		{files.Current, ours},
		{files.Base, base},
		{files.Other, theirs},
	}
	for _, stage := range stages {
		if err := os.WriteFile(stage.path, stage.data, 0o644); err != nil {
			cleanup()
			return engine.Files{}, nil, fmt.Errorf("write %s stage: %w", filepath.Base(stage.path), err)
		}
	}
	return files, cleanup, nil
}
