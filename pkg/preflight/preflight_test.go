package preflight

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestGitCheck(t *testing.T) {
	check := &GitCheck{}
	result := check.Run(context.Background())

	if result.Name != "git" {
		t.Errorf("expected name 'git', got '%s'", result.Name)
	}
	// Git may or may not be installed where tests run
	if result.Level != LevelError && result.Level != LevelInfo {
		t.Errorf("expected LevelError or LevelInfo, got %v", result.Level)
	}
}

func TestRepositoryCheck(t *testing.T) {
	plain := t.TempDir()
	result := (&RepositoryCheck{Dir: plain}).Run(context.Background())
	if result.Level != LevelError {
		t.Errorf("expected LevelError outside a repository, got %v (%s)", result.Level, result.Message)
	}

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
	repo := t.TempDir()
	if out, err := exec.Command("git", "init", repo).CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v: %s", err, out)
	}
	sub := filepath.Join(repo, "docs")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	result = (&RepositoryCheck{Dir: sub}).Run(context.Background())
	if result.Level != LevelWarn {
		t.Errorf("expected LevelWarn for a repository without commits, got %v (%s)", result.Level, result.Message)
	}
}

func TestTargetCheck(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "docs"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		file string
		want CheckLevel
	}{
		{name: "existing file", file: "README.md", want: LevelInfo},
		{name: "missing file", file: "MISSING.md", want: LevelError},
		{name: "directory", file: "docs", want: LevelError},
		{name: "outside work tree", file: "../README.md", want: LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := (&TargetCheck{Dir: dir, File: tt.file}).Run(context.Background())
			if result.Level != tt.want {
				t.Errorf("level = %v, want %v (%s)", result.Level, tt.want, result.Message)
			}
		})
	}
}

func TestTokenCheck(t *testing.T) {
	if got := (&TokenCheck{}).Run(context.Background()).Level; got != LevelWarn {
		t.Errorf("missing token level = %v, want LevelWarn", got)
	}
	if got := (&TokenCheck{Token: "ghs_x"}).Run(context.Background()).Level; got != LevelInfo {
		t.Errorf("token level = %v, want LevelInfo", got)
	}
}

func TestCheckerRun(t *testing.T) {
	dir := t.TempDir()

	err := NewChecker(Config{Workdir: dir, TargetFile: "README.md"}).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "target") {
		t.Fatalf("Run() error = %v, want target failure", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewChecker(Config{Workdir: dir, TargetFile: "README.md"}).Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}

	if err := NewChecker(Config{Skip: true, Workdir: dir, TargetFile: "MISSING.md"}).Run(context.Background()); err != nil {
		t.Errorf("skipped Run() error = %v", err)
	}
}

func TestNewCheckerSelectsChecks(t *testing.T) {
	c := NewChecker(Config{RequireGitBinary: true, RequireRepository: true})
	var names []string
	for _, check := range c.checks {
		names = append(names, check.Name())
	}
	if got := strings.Join(names, ","); got != "git,repository,target,github-token" {
		t.Errorf("checks = %s", got)
	}
}
