package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/holon-run/readme-activity/pkg/activity"
	"github.com/holon-run/readme-activity/pkg/config"
	"github.com/holon-run/readme-activity/pkg/git"
	"github.com/holon-run/readme-activity/pkg/github"
	"github.com/holon-run/readme-activity/pkg/logs/redact"
	"github.com/holon-run/readme-activity/pkg/preflight"
	"github.com/holon-run/readme-activity/pkg/publisher"
	"github.com/holon-run/readme-activity/pkg/section"
	"github.com/holon-run/readme-activity/pkg/updater"
)

func workdir(cfg config.Config) (string, error) {
	dir := cfg.Workdir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workdir: %w", err)
	}
	return abs, nil
}

// newChecker selects the environment checks that matter for cfg.
func newChecker(cfg config.Config) (*preflight.Checker, error) {
	dir, err := workdir(cfg)
	if err != nil {
		return nil, err
	}
	committing := !cfg.NoCommit
	return preflight.NewChecker(preflight.Config{
		Skip:              cfg.SkipPreflight,
		Workdir:           dir,
		TargetFile:        cfg.TargetFile,
		RequireGitBinary:  committing && cfg.Publisher == config.PublisherGit,
		RequireRepository: committing,
		Token:             cfg.Token,
	}), nil
}

// checkEnvironment runs the checks from newChecker. Failures are redacted
// because check output can echo the token.
func checkEnvironment(ctx context.Context, cfg config.Config, red *redact.Redactor) error {
	checker, err := newChecker(cfg)
	if err != nil {
		return red.Error(err)
	}
	return red.Error(checker.Run(ctx))
}

// newUpdater wires the event source, collector and publisher selected by cfg.
func newUpdater(cfg config.Config) (*updater.Updater, error) {
	var opts []github.Option
	if cfg.APIURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.APIURL))
	}
	client, err := github.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, err
	}
	source := github.NewEventSource(client, cfg.User, cfg.PerPage)

	glyphs, ok := activity.GlyphsByName(cfg.Style)
	if !ok {
		return nil, fmt.Errorf("unknown style %q", cfg.Style)
	}
	var filters []activity.Filter
	if cfg.NoDependabot {
		bots := cfg.BotLogins
		if len(bots) == 0 {
			bots = activity.DefaultBotLogins
		}
		filters = append(filters, activity.ExcludeBots(bots...))
	}
	collector := activity.NewCollector(cfg.MaxLines, activity.NewSerializer(glyphs), filters...)

	pub, err := publisher.Get(cfg.Publisher)
	if err != nil {
		return nil, err
	}

	dir, err := workdir(cfg)
	if err != nil {
		return nil, err
	}

	return updater.New(source, collector, pub, updater.Options{
		Dir:              dir,
		TargetFile:       cfg.TargetFile,
		Markers:          section.DefaultMarkers,
		Patch:            section.Options{Grow: cfg.GrowRegion},
		User:             cfg.User,
		CommitMessage:    cfg.CommitMessage,
		Author:           git.ResolveAuthor(git.AuthorOptionsFromEnv(cfg.CommitName, cfg.CommitEmail)),
		NoCommit:         cfg.NoCommit,
		Push:             cfg.Push,
		Token:            cfg.Token,
		KeepAliveMessage: cfg.KeepAliveMessage,
		KeepAliveDays:    cfg.KeepAliveDays,
	}), nil
}
