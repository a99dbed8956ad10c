package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr string
	}{
		{in: "true", want: true},
		{in: "false", want: false},
		{in: " true ", want: true},
		{in: "1", wantErr: "The entered NO_COMMIT is not valid: parsed type is number."},
		{in: "yes", wantErr: "The entered NO_COMMIT is not valid: cannot parse string ('yes')."},
		{in: "TRUE", wantErr: "cannot parse string"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBool(tt.in, "NO_COMMIT")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseBool(%q) error = %v, want %q", tt.in, err, tt.wantErr)
				}
				var cfgErr *Error
				if !errors.As(err, &cfgErr) || cfgErr.Name != "NO_COMMIT" {
					t.Errorf("error %v is not a *Error for NO_COMMIT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBool(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "5", want: 5},
		{in: " 12 ", want: 12},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "five", wantErr: true},
		{in: "2.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in, "MAX_LINES")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !strings.HasPrefix(err.Error(), "The entered MAX_LINES is not valid") {
				t.Errorf("unexpected message %q", err)
			}
			if got != tt.want {
				t.Errorf("ParseNumber(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{Getenv: envMap(map[string]string{"INPUT_GH_USERNAME": "octocat"})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.User = "octocat"
	if cfg.User != want.User || cfg.MaxLines != 5 || cfg.TargetFile != "README.md" ||
		!cfg.Push || cfg.Style != StyleEmoji || cfg.Publisher != PublisherGit ||
		cfg.KeepAliveDays != 0 || cfg.PerPage != 100 || cfg.CommitMessage != DefaultCommitMessage {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadEnvironment(t *testing.T) {
	cfg, err := Load(LoadOptions{Getenv: envMap(map[string]string{
		"GITHUB_TOKEN":        "ghs_abc",
		"INPUT_GH_USERNAME":   "octocat",
		"INPUT_MAX_LINES":     "8",
		"INPUT_NO_COMMIT":     "true",
		"INPUT_NO_DEPENDABOT": "true",
		"INPUT_BOT_LOGINS":    "dependabot[bot], renovate[bot]",
		"INPUT_COMMIT_NAME":   "",
		"INPUT_TARGET_FILE":   "docs/README.md",
	})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Token != "ghs_abc" || cfg.MaxLines != 8 || !cfg.NoCommit || !cfg.NoDependabot {
		t.Errorf("Load() = %+v", cfg)
	}
	if strings.Join(cfg.BotLogins, "|") != "dependabot[bot]|renovate[bot]" {
		t.Errorf("BotLogins = %v", cfg.BotLogins)
	}
	if cfg.CommitName != "" {
		t.Errorf("empty input should be ignored, got CommitName %q", cfg.CommitName)
	}
	if cfg.TargetFile != "docs/README.md" {
		t.Errorf("TargetFile = %q", cfg.TargetFile)
	}
}

func TestParseNonNegative(t *testing.T) {
	if n, err := ParseNonNegative("0", "KEEPALIVE_DAYS"); err != nil || n != 0 {
		t.Errorf("ParseNonNegative(0) = %d, %v", n, err)
	}
	if n, err := ParseNonNegative("30", "KEEPALIVE_DAYS"); err != nil || n != 30 {
		t.Errorf("ParseNonNegative(30) = %d, %v", n, err)
	}
	if _, err := ParseNonNegative("-1", "KEEPALIVE_DAYS"); err == nil {
		t.Error("ParseNonNegative(-1) expected error")
	}
}

func TestKeepAliveDisabledByDefault(t *testing.T) {
	cfg, err := Load(LoadOptions{Getenv: envMap(map[string]string{"INPUT_GH_USERNAME": "octocat"})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.KeepAliveDays != 0 {
		t.Errorf("KeepAliveDays = %d, want 0 (disabled)", cfg.KeepAliveDays)
	}
}

func TestKeepAliveDaysZero(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		cfg, err := Load(LoadOptions{Getenv: envMap(map[string]string{
			"INPUT_GH_USERNAME":    "octocat",
			"INPUT_KEEPALIVE_DAYS": "0",
		})})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.KeepAliveDays != 0 {
			t.Errorf("KeepAliveDays = %d, want 0", cfg.KeepAliveDays)
		}
	})

	t.Run("flag", func(t *testing.T) {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(fs)
		if err := fs.Parse([]string{"--keepalive-days=0"}); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(LoadOptions{
			Getenv: envMap(map[string]string{"INPUT_GH_USERNAME": "octocat", "INPUT_KEEPALIVE_DAYS": "30"}),
			Flags:  fs,
		})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.KeepAliveDays != 0 {
			t.Errorf("KeepAliveDays = %d, want 0", cfg.KeepAliveDays)
		}
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, err := Load(LoadOptions{Getenv: envMap(map[string]string{
			"INPUT_GH_USERNAME":    "octocat",
			"INPUT_KEEPALIVE_DAYS": "-2",
		})})
		var cfgErr *Error
		if !errors.As(err, &cfgErr) || cfgErr.Name != "KEEPALIVE_DAYS" {
			t.Errorf("Load() error = %v, want KEEPALIVE_DAYS error", err)
		}
	})
}

func TestLoadInvalidInput(t *testing.T) {
	_, err := Load(LoadOptions{Getenv: envMap(map[string]string{
		"INPUT_GH_USERNAME": "octocat",
		"INPUT_MAX_LINES":   "many",
	})})
	var cfgErr *Error
	if !errors.As(err, &cfgErr) || cfgErr.Name != "MAX_LINES" {
		t.Fatalf("Load() error = %v, want MAX_LINES error", err)
	}
}

func TestLoadFileAndPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.yaml")
	content := `user: from-file
max_lines: 3
style: plain
push: false
author: File Bot <file@example.com>
bot_logins:
  - renovate[bot]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--max-lines", "9", "--no-commit"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{
		Path:   path,
		Getenv: envMap(map[string]string{"INPUT_GH_USERNAME": "from-env", "INPUT_MAX_LINES": "4"}),
		Flags:  fs,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.User != "from-env" {
		t.Errorf("User = %q, environment should override the file", cfg.User)
	}
	if cfg.MaxLines != 9 {
		t.Errorf("MaxLines = %d, flags should override the environment", cfg.MaxLines)
	}
	if !cfg.NoCommit {
		t.Error("--no-commit without a value should enable NoCommit")
	}
	if cfg.Style != StylePlain || cfg.Push {
		t.Errorf("file values lost: style %q push %v", cfg.Style, cfg.Push)
	}
	if cfg.CommitName != "File Bot" || cfg.CommitEmail != "file@example.com" {
		t.Errorf("author = %q <%q>", cfg.CommitName, cfg.CommitEmail)
	}
	if len(cfg.BotLogins) != 1 || cfg.BotLogins[0] != "renovate[bot]" {
		t.Errorf("BotLogins = %v", cfg.BotLogins)
	}
	if cfg.KeepAliveDays != DefaultKeepAliveDays {
		t.Errorf("KeepAliveDays = %d, unset file keys should keep defaults", cfg.KeepAliveDays)
	}
}

func TestLoadRejectsUnknownFileKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.yaml")
	if err := os.WriteFile(path, []byte("user: octocat\nmax_line: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(LoadOptions{Path: path, Getenv: envMap(nil)}); err == nil {
		t.Error("Load() expected error for unknown key")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(LoadOptions{Path: path, Getenv: envMap(map[string]string{"INPUT_GH_USERNAME": "octocat"})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxLines != DefaultMaxLines {
		t.Errorf("MaxLines = %d", cfg.MaxLines)
	}
}

func TestApplyFlagsInvalid(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--push=maybe"}); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	err := cfg.ApplyFlags(fs)
	if err == nil || !strings.Contains(err.Error(), "--push") {
		t.Errorf("ApplyFlags() error = %v, want --push error", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.User = "octocat"

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing user", mutate: func(c *Config) { c.User = " " }, field: "GH_USERNAME"},
		{name: "zero max lines", mutate: func(c *Config) { c.MaxLines = 0 }, field: "MAX_LINES"},
		{name: "per page too large", mutate: func(c *Config) { c.PerPage = 101 }, field: "PER_PAGE"},
		{name: "unknown style", mutate: func(c *Config) { c.Style = "fancy" }, field: "STYLE"},
		{name: "unknown publisher", mutate: func(c *Config) { c.Publisher = "svn" }, field: "PUBLISHER"},
		{name: "go-git publisher", mutate: func(c *Config) { c.Publisher = PublisherGoGit }},
		{name: "negative keepalive", mutate: func(c *Config) { c.KeepAliveDays = -1 }, field: "KEEPALIVE_DAYS"},
		{name: "empty commit message", mutate: func(c *Config) { c.CommitMessage = "" }, field: "COMMIT_MSG"},
		{name: "broken keepalive template", mutate: func(c *Config) { c.KeepAliveMessage = "{{.User" }, field: "KEEPALIVE_MSG"},
		{name: "empty target", mutate: func(c *Config) { c.TargetFile = "" }, field: "TARGET_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			var cfgErr *Error
			if !errors.As(err, &cfgErr) || cfgErr.Name != tt.field {
				t.Errorf("Validate() error = %v, want error for %s", err, tt.field)
			}
		})
	}
}
