// Package config assembles the updater configuration from defaults, an
// optional YAML file, GitHub Actions inputs and command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/holon-run/readme-activity/pkg/git"
	"github.com/holon-run/readme-activity/pkg/message"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCommitMessage    = "⚡ Update README with the recent activity"
	DefaultKeepAliveMessage = "⏳ Keep the activity workflow alive"
	DefaultMaxLines         = 5
	DefaultTargetFile       = "README.md"
	DefaultKeepAliveDays    = 0
	DefaultPerPage          = 100
	DefaultSchedule         = "@hourly"

	StyleEmoji = "emoji"
	StylePlain = "plain"

	PublisherGit   = "git"
	PublisherGoGit = "go-git"
)

// Config is the fully resolved configuration of one updater run.
type Config struct {
	User          string `yaml:"user"`
	Token         string `yaml:"token"`
	CommitName    string `yaml:"commit_name"`
	CommitEmail   string `yaml:"commit_email"`
	CommitMessage string `yaml:"commit_message"`
	// Author is an alternative to CommitName/CommitEmail in "Name <email>" form.
	Author string `yaml:"author"`

	MaxLines   int    `yaml:"max_lines"`
	TargetFile string `yaml:"target_file"`
	Workdir    string `yaml:"workdir"`

	NoDependabot bool     `yaml:"no_dependabot"`
	BotLogins    []string `yaml:"bot_logins"`
	NoCommit     bool     `yaml:"no_commit"`
	Push         bool     `yaml:"push"`
	Style        string   `yaml:"style"`
	GrowRegion   bool     `yaml:"grow_region"`

	// KeepAliveDays of zero (the default) disables keep-alive commits.
	KeepAliveMessage string `yaml:"keepalive_message"`
	KeepAliveDays    int    `yaml:"keepalive_days"`

	Publisher string `yaml:"publisher"`
	APIURL    string `yaml:"api_url"`
	PerPage   int    `yaml:"per_page"`
	Schedule  string `yaml:"schedule"`

	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	SkipPreflight bool   `yaml:"skip_preflight"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		CommitMessage:    DefaultCommitMessage,
		MaxLines:         DefaultMaxLines,
		TargetFile:       DefaultTargetFile,
		Push:             true,
		Style:            StyleEmoji,
		KeepAliveMessage: DefaultKeepAliveMessage,
		KeepAliveDays:    DefaultKeepAliveDays,
		Publisher:        PublisherGit,
		PerPage:          DefaultPerPage,
		Schedule:         DefaultSchedule,
	}
}

// Error reports an input value that could not be parsed.
type Error struct {
	Name   string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("Invalid value ('%s'): %s.", e.Value, e.Reason)
	}
	return fmt.Sprintf("The entered %s is not valid: %s.", e.Name, e.Reason)
}

// ParseBool accepts only the literals true and false.
func ParseBool(value, name string) (bool, error) {
	switch strings.TrimSpace(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return false, &Error{Name: name, Value: value, Reason: "parsed type is number"}
	}
	return false, &Error{Name: name, Value: value, Reason: fmt.Sprintf("cannot parse string ('%s')", value)}
}

// ParseNumber requires a positive base-10 integer.
func ParseNumber(value, name string) (int, error) {
	return parseInt(value, name, 1)
}

// ParseNonNegative is ParseNumber with zero allowed.
func ParseNonNegative(value, name string) (int, error) {
	return parseInt(value, name, 0)
}

func parseInt(value, name string, min int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &Error{Name: name, Value: value, Reason: fmt.Sprintf("cannot parse number ('%s')", value)}
	}
	if n < min {
		if min == 1 {
			return 0, &Error{Name: name, Value: value, Reason: "must be greater than zero"}
		}
		return 0, &Error{Name: name, Value: value, Reason: fmt.Sprintf("must be at least %d", min)}
	}
	return n, nil
}

type setter func(c *Config, value string) error

// field binds one setting to its Actions input name and its flag name.
type field struct {
	input string
	flag  string
	usage string
	set   setter
}

func stringSetter(dst func(*Config) *string) setter {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func boolSetter(name string, dst func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := ParseBool(v, name)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

func numberSetter(name string, dst func(*Config) *int) setter {
	return intSetter(ParseNumber, name, dst)
}

func nonNegativeSetter(name string, dst func(*Config) *int) setter {
	return intSetter(ParseNonNegative, name, dst)
}

func intSetter(parse func(value, name string) (int, error), name string, dst func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := parse(v, name)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func listSetter(dst func(*Config) *[]string) setter {
	return func(c *Config, v string) error {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*dst(c) = out
		return nil
	}
}

var fields = []field{
	{"GH_USERNAME", "user", "GitHub user whose activity is listed", stringSetter(func(c *Config) *string { return &c.User })},
	{"GITHUB_TOKEN", "token", "token used for the API and for pushing", stringSetter(func(c *Config) *string { return &c.Token })},
	{"COMMIT_NAME", "commit-name", "commit author name", stringSetter(func(c *Config) *string { return &c.CommitName })},
	{"COMMIT_EMAIL", "commit-email", "commit author email", stringSetter(func(c *Config) *string { return &c.CommitEmail })},
	{"COMMIT_MSG", "commit-message", "commit message", stringSetter(func(c *Config) *string { return &c.CommitMessage })},
	{"AUTHOR", "author", `commit author as "Name <email>"`, stringSetter(func(c *Config) *string { return &c.Author })},
	{"MAX_LINES", "max-lines", "maximum number of activity lines", numberSetter("MAX_LINES", func(c *Config) *int { return &c.MaxLines })},
	{"TARGET_FILE", "target-file", "document to update, relative to the workdir", stringSetter(func(c *Config) *string { return &c.TargetFile })},
	{"WORKDIR", "workdir", "repository checkout to work in", stringSetter(func(c *Config) *string { return &c.Workdir })},
	{"NO_DEPENDABOT", "no-dependabot", "skip pull requests opened by bots", boolSetter("NO_DEPENDABOT", func(c *Config) *bool { return &c.NoDependabot })},
	{"BOT_LOGINS", "bot-logins", "comma separated bot logins for --no-dependabot", listSetter(func(c *Config) *[]string { return &c.BotLogins })},
	{"NO_COMMIT", "no-commit", "write the document without committing", boolSetter("NO_COMMIT", func(c *Config) *bool { return &c.NoCommit })},
	{"PUSH", "push", "push after committing", boolSetter("PUSH", func(c *Config) *bool { return &c.Push })},
	{"STYLE", "style", "line style: emoji or plain", stringSetter(func(c *Config) *string { return &c.Style })},
	{"GROW_REGION", "grow-region", "let an existing region grow or shrink to the new line count", boolSetter("GROW_REGION", func(c *Config) *bool { return &c.GrowRegion })},
	{"KEEPALIVE_MSG", "keepalive-message", "message of keep-alive empty commits", stringSetter(func(c *Config) *string { return &c.KeepAliveMessage })},
	{"KEEPALIVE_DAYS", "keepalive-days", "days without commits before a keep-alive empty commit (0 disables)", nonNegativeSetter("KEEPALIVE_DAYS", func(c *Config) *int { return &c.KeepAliveDays })},
	{"PUBLISHER", "publisher", "commit backend: git or go-git", stringSetter(func(c *Config) *string { return &c.Publisher })},
	{"API_URL", "api-url", "GitHub API base URL", stringSetter(func(c *Config) *string { return &c.APIURL })},
	{"PER_PAGE", "per-page", "events requested per page", numberSetter("PER_PAGE", func(c *Config) *int { return &c.PerPage })},
	{"SCHEDULE", "schedule", "cron schedule for watch", stringSetter(func(c *Config) *string { return &c.Schedule })},
	{"LOG_LEVEL", "log-level", "log level: debug, info, progress, warn, error", stringSetter(func(c *Config) *string { return &c.LogLevel })},
	{"LOG_FORMAT", "log-format", "log format: console or json", stringSetter(func(c *Config) *string { return &c.LogFormat })},
	{"SKIP_PREFLIGHT", "skip-preflight", "skip environment checks before running", boolSetter("SKIP_PREFLIGHT", func(c *Config) *bool { return &c.SkipPreflight })},
}

// RegisterFlags defines one string flag per setting on fs. Values are parsed
// by ApplyFlags so flags follow the same rules as Actions inputs.
func RegisterFlags(fs *pflag.FlagSet) {
	for _, f := range fields {
		fs.String(f.flag, "", f.usage)
	}
	fs.Lookup("no-dependabot").NoOptDefVal = "true"
	fs.Lookup("no-commit").NoOptDefVal = "true"
	fs.Lookup("grow-region").NoOptDefVal = "true"
	fs.Lookup("skip-preflight").NoOptDefVal = "true"
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// Path is an optional YAML config file.
	Path string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Flags, when set, contributes every flag that was changed on the command line.
	Flags *pflag.FlagSet
}

// Load resolves the configuration in order defaults < file < environment < flags
// and validates the result.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", opts.Path, err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", opts.Path, err)
		}
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}

	if opts.Flags != nil {
		if err := cfg.ApplyFlags(opts.Flags); err != nil {
			return Config{}, err
		}
	}

	if cfg.Author != "" {
		name, email := git.ParseGitAuthor(cfg.Author)
		if cfg.CommitName == "" {
			cfg.CommitName = name
		}
		if cfg.CommitEmail == "" {
			cfg.CommitEmail = email
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv reads INPUT_<NAME> variables the way GitHub Actions exposes
// action inputs. Empty values count as unset. GITHUB_TOKEN is also read
// without the prefix.
func (c *Config) applyEnv(getenv func(string) string) error {
	if tok := strings.TrimSpace(getenv("GITHUB_TOKEN")); tok != "" {
		c.Token = tok
	}
	for _, f := range fields {
		v := strings.TrimSpace(getenv("INPUT_" + f.input))
		if v == "" {
			continue
		}
		if err := f.set(c, v); err != nil {
			return err
		}
	}
	return nil
}

// ApplyFlags overlays the flags that were explicitly set on fs.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	for _, f := range fields {
		fl := fs.Lookup(f.flag)
		if fl == nil || !fl.Changed {
			continue
		}
		if err := f.set(c, fl.Value.String()); err != nil {
			return fmt.Errorf("--%s: %w", f.flag, err)
		}
	}
	return nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return &Error{Name: "GH_USERNAME", Reason: "a GitHub user is required"}
	}
	if c.MaxLines <= 0 {
		return &Error{Name: "MAX_LINES", Value: strconv.Itoa(c.MaxLines), Reason: "must be greater than zero"}
	}
	if c.PerPage <= 0 || c.PerPage > DefaultPerPage {
		return &Error{Name: "PER_PAGE", Value: strconv.Itoa(c.PerPage), Reason: "must be between 1 and 100"}
	}
	if c.KeepAliveDays < 0 {
		return &Error{Name: "KEEPALIVE_DAYS", Value: strconv.Itoa(c.KeepAliveDays), Reason: "must not be negative"}
	}
	switch c.Style {
	case StyleEmoji, StylePlain:
	default:
		return &Error{Name: "STYLE", Value: c.Style, Reason: "must be emoji or plain"}
	}
	switch c.Publisher {
	case PublisherGit, PublisherGoGit:
	default:
		return &Error{Name: "PUBLISHER", Value: c.Publisher, Reason: "must be git or go-git"}
	}
	if err := message.Validate(c.CommitMessage); err != nil {
		return &Error{Name: "COMMIT_MSG", Value: c.CommitMessage, Reason: err.Error()}
	}
	if err := message.Validate(c.KeepAliveMessage); err != nil {
		return &Error{Name: "KEEPALIVE_MSG", Value: c.KeepAliveMessage, Reason: err.Error()}
	}
	if strings.TrimSpace(c.TargetFile) == "" {
		return &Error{Name: "TARGET_FILE", Reason: "a target file is required"}
	}
	return nil
}
