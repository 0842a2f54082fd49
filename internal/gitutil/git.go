package gitutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command is the git executable used by this package and by gitmerge.
var Command = "git"

func git(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, Command, args...)
	cmd.Dir = dir
	return cmd
}

// RepoRoot returns the repository root directory for the given working directory.
func RepoRoot(ctx context.Context, cwd string) (string, error) {
	output, err := git(ctx, cwd, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse --show-toplevel failed: %w", err)
	}
	root := strings.TrimSpace(string(output))
	if root == "" {
		return "", fmt.Errorf("git rev-parse returned empty repo root")
	}
	return root, nil
}

// GitDir returns the repository's internal directory (usually .git), made
// absolute relative to cwd when git reports a relative path.
func GitDir(ctx context.Context, cwd string) (string, error) {
	output, err := git(ctx, cwd, "rev-parse", "--absolute-git-dir").Output()
	if err != nil {
		return "", errors.New("not in a git directory")
	}
	dir := strings.TrimSpace(string(output))
	if dir == "" {
		return "", errors.New("not in a git directory")
	}
	return dir, nil
}

func scopeArgs(global bool, args ...string) []string {
	out := []string{"config"}
	if global {
		out = append(out, "--global")
	}
	return append(out, args...)
}

// ConfigFile returns the path of the config file git would edit for the
// given scope.
func ConfigFile(ctx context.Context, cwd string, global bool) (string, error) {
	cmd := git(ctx, cwd, scopeArgs(global, "-e")...)
	cmd.Env = append(os.Environ(), "GIT_EDITOR=echo")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git config -e failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// ConfigGet reads a config value. ok is false when the key is not set.
func ConfigGet(ctx context.Context, cwd string, global bool, key string) (value string, ok bool, err error) {
	output, err := git(ctx, cwd, scopeArgs(global, "--get", key)...).Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("git config --get %s failed: %w", key, err)
	}
	return strings.TrimSuffix(string(output), "\n"), true, nil
}

// ConfigSet writes a config value.
func ConfigSet(ctx context.Context, cwd string, global bool, key, value string) error {
	var stderr bytes.Buffer
	cmd := git(ctx, cwd, scopeArgs(global, key, value)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("git config %s failed: %s", key, msg)
	}
	return nil
}

// ListUnmergedFiles returns repo-relative paths of conflicted files under scopePathspec.
func ListUnmergedFiles(ctx context.Context, repoRoot string, scopePathspec string) ([]string, error) {
	pathspec := scopePathspec
	if pathspec == "" {
		pathspec = "."
	}

	output, err := git(ctx, repoRoot, "diff", "--name-only", "--diff-filter=U", "--", pathspec).Output()
	if err != nil {
		return nil, fmt.Errorf("git diff --name-only --diff-filter=U failed: %w", err)
	}

	var paths []string
	for _, line := range bytes.Split(output, []byte{'\n'}) {
		p := strings.TrimSpace(string(line))
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// ShowStage reads a conflicted file content from the git index stage (1=base, 2=ours, 3=theirs).
func ShowStage(ctx context.Context, repoRoot string, stage int, path string) ([]byte, error) {
	ref := fmt.Sprintf(":%d:%s", stage, path)
	output, err := git(ctx, repoRoot, "show", ref).Output()
	if err != nil {
		return nil, fmt.Errorf("git show %s failed: %w", ref, err)
	}
	return output, nil
}
