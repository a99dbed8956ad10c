// Package preflight verifies the environment before an update touches the
// network or the work tree.
package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/holon-run/readme-activity/pkg/log"
	"github.com/holon-run/readme-activity/pkg/pathutil"
)

// CheckLevel represents the severity level of a preflight check
type CheckLevel int

const (
	// LevelError indicates a critical failure that prevents execution
	LevelError CheckLevel = iota
	// LevelWarn indicates a warning that should be addressed but doesn't block execution
	LevelWarn
	// LevelInfo indicates informational output
	LevelInfo
)

// CheckResult represents the result of a single preflight check
type CheckResult struct {
	Name    string
	Level   CheckLevel
	Message string
	Error   error
}

// Check represents a single preflight check
type Check interface {
	Name() string
	Run(ctx context.Context) CheckResult
}

// Checker runs a collection of preflight checks
type Checker struct {
	checks  []Check
	skipped bool
}

// Config configures the preflight checker
type Config struct {
	// Skip skips all preflight checks
	Skip bool
	// Workdir is the repository work tree.
	Workdir string
	// TargetFile is the document to update, relative to Workdir.
	TargetFile string
	// RequireGitBinary checks that git is on PATH (system git publisher).
	RequireGitBinary bool
	// RequireRepository checks that Workdir is inside a git work tree.
	RequireRepository bool
	// Token is the configured GitHub token; its absence is a warning.
	Token string
}

// NewChecker creates a new preflight checker with the given configuration
func NewChecker(cfg Config) *Checker {
	c := &Checker{skipped: cfg.Skip}

	if cfg.RequireGitBinary {
		c.checks = append(c.checks, &GitCheck{})
	}
	if cfg.RequireRepository {
		c.checks = append(c.checks, &RepositoryCheck{Dir: cfg.Workdir})
	}
	c.checks = append(c.checks,
		&TargetCheck{Dir: cfg.Workdir, File: cfg.TargetFile},
		&TokenCheck{Token: cfg.Token},
	)
	return c
}

// Run executes all registered checks and returns an error if any critical checks fail
func (c *Checker) Run(ctx context.Context) error {
	if c.skipped {
		log.Info("preflight checks skipped")
		return nil
	}

	var failures []string
	for _, check := range c.checks {
		result := check.Run(ctx)

		switch result.Level {
		case LevelError:
			log.Error("preflight check failed", "check", result.Name, "message", result.Message)
			failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Message))
		case LevelWarn:
			log.Warn("preflight check warning", "check", result.Name, "message", result.Message)
		case LevelInfo:
			log.Debug("preflight check", "check", result.Name, "message", result.Message)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("preflight checks failed:\n  - %s", strings.Join(failures, "\n  - "))
	}
	return nil
}

// GitCheck checks that the git binary is installed
type GitCheck struct{}

func (c *GitCheck) Name() string {
	return "git"
}

func (c *GitCheck) Run(ctx context.Context) CheckResult {
	if _, err := exec.LookPath("git"); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "git command not found; install git or use the go-git publisher",
			Error:   err,
		}
	}

	output, err := exec.CommandContext(ctx, "git", "--version").CombinedOutput()
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: "git is installed but may not be working correctly",
			Error:   err,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("git is available (%s)", strings.TrimSpace(string(output))),
	}
}

// RepositoryCheck checks that Dir is inside a git work tree
type RepositoryCheck struct {
	Dir string
}

func (c *RepositoryCheck) Name() string {
	return "repository"
}

func (c *RepositoryCheck) Run(ctx context.Context) CheckResult {
	repo, err := gogit.PlainOpenWithOptions(c.Dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("%s is not a git work tree; run inside a checkout or pass --no-commit", c.Dir),
			Error:   err,
		}
	}
	if _, err := repo.Head(); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: "repository has no commits yet",
			Error:   err,
		}
	}
	return CheckResult{Name: c.Name(), Level: LevelInfo, Message: "repository found"}
}

// TargetCheck checks that the document exists, is a regular file inside
// Dir and can be written
type TargetCheck struct {
	Dir  string
	File string
}

func (c *TargetCheck) Name() string {
	return "target"
}

func (c *TargetCheck) Run(ctx context.Context) CheckResult {
	path, err := pathutil.Resolve(c.Dir, c.File)
	if err != nil {
		return CheckResult{Name: c.Name(), Level: LevelError, Message: err.Error(), Error: err}
	}

	root := c.Dir
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if !pathutil.Within(root, path) {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("%s is outside the work tree %s", c.File, c.Dir),
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("cannot read %s", path),
			Error:   err,
		}
	}
	if !info.Mode().IsRegular() {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("%s is not a regular file", path),
		}
	}
	if info.Mode().Perm()&0o200 == 0 {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("%s is read-only", path),
		}
	}
	return CheckResult{Name: c.Name(), Level: LevelInfo, Message: fmt.Sprintf("updating %s", path)}
}

// TokenCheck warns when the API is used anonymously
type TokenCheck struct {
	Token string
}

func (c *TokenCheck) Name() string {
	return "github-token"
}

func (c *TokenCheck) Run(ctx context.Context) CheckResult {
	if strings.TrimSpace(c.Token) == "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: "no GitHub token; API requests are anonymous and heavily rate limited",
		}
	}
	return CheckResult{Name: c.Name(), Level: LevelInfo, Message: "GitHub token available"}
}
