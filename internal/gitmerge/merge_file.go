package gitmerge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/chojs23/merge-structure-sql/internal/gitutil"
)

// MergeFile runs git's canonical three-way merge in place: the result is
// written to currentPath, informational messages are suppressed and anything
// else git prints goes to stdout/stderr.
//
// The returned code is git's exit status: 0 for a clean merge, otherwise the
// number of conflicts (truncated to 127) or 255 for an error reported by git.
// err is non-nil only if git could not be run at all.
func MergeFile(ctx context.Context, stdout, stderr io.Writer, currentPath, basePath, otherPath string) (int, error) {
	cmd := exec.CommandContext(ctx, gitutil.Command, "merge-file", "-q", currentPath, basePath, otherPath)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() >= 0 {
		return ee.ExitCode(), nil
	}
	return -1, fmt.Errorf("git merge-file failed: %w", err)
}

// MergeFileOutput runs the same merge but returns the result instead of
// overwriting currentPath, together with the number of conflicts.
func MergeFileOutput(ctx context.Context, currentPath, basePath, otherPath string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, gitutil.Command, "merge-file", "-q", "-p", currentPath, basePath, otherPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), 0, nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code := ee.ExitCode()
		if code > 0 && code < 128 {
			return stdout.Bytes(), code, nil
		}
	}

	msg := stderr.String()
	if msg == "" {
		msg = err.Error()
	}
	return nil, 0, fmt.Errorf("git merge-file failed: %s", msg)
}
