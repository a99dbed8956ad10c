// Package git wraps the system git binary for the handful of operations
// needed to publish a README update: identity, staging, committing and
// pushing. Every call runs exactly once; nothing is retried.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// nothingToCommit is the phrase git prints when a commit has no staged changes.
const nothingToCommit = "nothing to commit"

// CommandError is a git invocation that exited unsuccessfully.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, out)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsNothingToCommit reports whether err is a commit that failed only
// because the working tree had no changes.
func IsNothingToCommit(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr) && strings.Contains(cmdErr.Output, nothingToCommit)
}

// Client runs git inside Dir.
type Client struct {
	Dir string
}

// NewClient creates a client for the repository (or any directory inside it) at dir.
func NewClient(dir string) *Client {
	return &Client{Dir: dir}
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), &CommandError{Args: args, Output: out.String(), Err: err}
	}
	return out.String(), nil
}

// IsRepo reports whether Dir is inside a git work tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// HeadSHA returns the commit hash of HEAD.
func (c *Client) HeadSHA(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ConfigGet reads a configuration value visible from Dir.
func (c *Client) ConfigGet(ctx context.Context, key string) (string, error) {
	out, err := c.run(ctx, "config", "--get", key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SetConfig writes a repository-local configuration value.
func (c *Client) SetConfig(ctx context.Context, key, value string) error {
	_, err := c.run(ctx, "config", key, value)
	return err
}

// SetIdentity configures the commit author for the repository.
func (c *Client) SetIdentity(ctx context.Context, name, email string) error {
	if err := c.SetConfig(ctx, "user.email", email); err != nil {
		return fmt.Errorf("failed to set user.email: %w", err)
	}
	if err := c.SetConfig(ctx, "user.name", name); err != nil {
		return fmt.Errorf("failed to set user.name: %w", err)
	}
	return nil
}

// Add stages paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	_, err := c.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// CommitOptions controls Commit.
type CommitOptions struct {
	// AllowEmpty records a commit even when nothing is staged.
	AllowEmpty bool
}

// Commit records staged changes. A commit with nothing staged returns an
// error for which IsNothingToCommit is true.
func (c *Client) Commit(ctx context.Context, message string, opts CommitOptions) error {
	args := []string{"commit", "-m", message}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	_, err := c.run(ctx, args...)
	return err
}

// Push pushes the current branch to its upstream.
func (c *Client) Push(ctx context.Context) error {
	_, err := c.run(ctx, "push")
	return err
}

// LastCommitTime returns the committer date of HEAD.
func (c *Client) LastCommitTime(ctx context.Context) (time.Time, error) {
	out, err := c.run(ctx, "log", "-1", "--format=%ct")
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unexpected git log output %q: %w", strings.TrimSpace(out), err)
	}
	return time.Unix(secs, 0), nil
}
