// Package git runs git subprocesses and parses their machine-readable
// output. All repository access goes through the Executor interface so
// higher layers can be tested with fakes.
package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
)

// DefaultMaxOutputBytes is the output ceiling for git subprocess calls.
// Output beyond this fails the call with git.output_too_large rather than
// buffering without bound.
const DefaultMaxOutputBytes = 64 * 1024 * 1024

// Executor runs a git command and returns its stdout.
// Implementations must fail rather than block indefinitely on
// pathological output sizes.
type Executor interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// CLI is an Executor backed by the git binary.
type CLI struct {
	// RepoPath is the working directory for git commands.
	RepoPath string

	// MaxOutputBytes caps subprocess stdout. Zero means DefaultMaxOutputBytes.
	MaxOutputBytes int64

	// program is the binary to execute. Overridable for tests.
	program string
}

// NewCLI creates a CLI executor rooted at repoPath.
func NewCLI(repoPath string, maxOutputBytes int64) *CLI {
	if maxOutputBytes <= 0 {
		maxOutputBytes = DefaultMaxOutputBytes
	}
	return &CLI{
		RepoPath:       repoPath,
		MaxOutputBytes: maxOutputBytes,
		program:        "git",
	}
}

// Run executes git with the given arguments and returns stdout.
// Stdout is read through a hard ceiling: if the process produces more than
// MaxOutputBytes, it is killed and a git.output_too_large error is returned.
// Any other failure surfaces as git.failed with the stderr tail attached.
func (c *CLI) Run(ctx context.Context, args ...string) (string, error) {
	program := c.program
	if program == "" {
		program = "git"
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = c.RepoPath

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeGitFailed, "failed to open stdout pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return "", apperrors.Wrap(apperrors.CodeGitFailed,
			fmt.Sprintf("failed to start %s %s", program, strings.Join(args, " ")), err)
	}

	// Read one byte past the ceiling so overflow is detectable.
	out, readErr := io.ReadAll(io.LimitReader(stdout, c.MaxOutputBytes+1))

	if int64(len(out)) > c.MaxOutputBytes {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return "", apperrors.New(apperrors.CodeGitOutputTooLarge,
			fmt.Sprintf("%s %s produced more than %d bytes of output", program, strings.Join(args, " "), c.MaxOutputBytes))
	}

	waitErr := cmd.Wait()

	if readErr != nil {
		return "", apperrors.Wrap(apperrors.CodeGitFailed, "failed to read git output", readErr)
	}

	if waitErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = waitErr.Error()
		}
		return "", apperrors.Wrap(apperrors.CodeGitFailed,
			fmt.Sprintf("git %s failed: %s", strings.Join(args, " "), detail), waitErr)
	}

	return string(out), nil
}

// ResolveDir returns the real git metadata directory for a watch root.
// It asks git first (handles linked worktrees, where the metadata lives
// outside the worktree), falls back to <root>/.git when git fails, and
// resolves relative answers against the root.
func ResolveDir(ctx context.Context, ex Executor, root string) string {
	out, err := ex.Run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return filepath.Join(root, ".git")
	}

	dir := strings.TrimSpace(out)
	if dir == "" {
		return filepath.Join(root, ".git")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Clean(dir)
}

// CheckIgnore reports whether the repo-relative path is gitignored.
// git signals "nothing ignored" by exiting non-zero, the same channel it
// uses for genuine errors, so any failure is treated as "not ignored".
func CheckIgnore(ctx context.Context, ex Executor, relPath string) bool {
	_, err := ex.Run(ctx, "check-ignore", "--quiet", relPath)
	return err == nil
}

// ShowBlob returns the content of a file's blob at the given ref.
func ShowBlob(ctx context.Context, ex Executor, ref, path string) (string, error) {
	return ex.Run(ctx, "show", ref+":"+path)
}
