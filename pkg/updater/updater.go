// Package updater runs one activity update: collect, patch, write, publish.
package updater

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/holon-run/readme-activity/pkg/activity"
	"github.com/holon-run/readme-activity/pkg/git"
	"github.com/holon-run/readme-activity/pkg/log"
	"github.com/holon-run/readme-activity/pkg/message"
	"github.com/holon-run/readme-activity/pkg/publisher"
	"github.com/holon-run/readme-activity/pkg/section"
)

// Outcome is the terminal state of a successful run.
type Outcome int

const (
	// OutcomeNoActivity means no eligible events were found.
	OutcomeNoActivity Outcome = iota
	// OutcomeUnchanged means the document already shows the current activity.
	OutcomeUnchanged
	// OutcomeWritten means the document was written and committing was skipped.
	OutcomeWritten
	// OutcomeCommitted means the document was written and committed.
	OutcomeCommitted
	// OutcomeKeptAlive means an empty commit was recorded for lack of activity.
	OutcomeKeptAlive
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoActivity:
		return "No PullRequest/Issue/IssueComment/Release events found. Leaving the document unchanged."
	case OutcomeUnchanged:
		return "No changes detected."
	case OutcomeWritten:
		return "Wrote to the document."
	case OutcomeCommitted:
		return "Committed the updated document."
	case OutcomeKeptAlive:
		return "No activity found. Recorded a keep-alive commit."
	default:
		return "outcome(" + strconv.Itoa(int(o)) + ")"
	}
}

// Options configure an Updater.
type Options struct {
	// Dir is the repository work tree; TargetFile is relative to it.
	Dir        string
	TargetFile string
	Markers    section.Markers
	Patch      section.Options

	// User is passed to commit message templates.
	User string
	// CommitMessage and KeepAliveMessage may be message templates.
	CommitMessage string
	Author        git.Author
	NoCommit      bool
	Push          bool
	Token         string

	// KeepAliveDays of zero disables keep-alive commits.
	KeepAliveMessage string
	KeepAliveDays    int

	// Now defaults to time.Now.
	Now func() time.Time
}

// Result reports a successful run.
type Result struct {
	Outcome Outcome
	// Message is a human readable summary for the caller to print.
	Message string
	Lines   []string
	Mode    section.Mode
	Stats   activity.Stats
	Commit  publisher.Result
}

// Updater wires an event source, a collector and a publisher together.
type Updater struct {
	opts      Options
	source    activity.Source
	collector *activity.Collector
	publisher publisher.Publisher
}

// New creates an Updater. The publisher may be nil when opts.NoCommit is set
// and keep-alive commits are disabled.
func New(src activity.Source, c *activity.Collector, p publisher.Publisher, opts Options) *Updater {
	if opts.Markers == (section.Markers{}) {
		opts.Markers = section.DefaultMarkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Updater{opts: opts, source: src, collector: c, publisher: p}
}

func (u *Updater) path() string {
	if filepath.IsAbs(u.opts.TargetFile) {
		return u.opts.TargetFile
	}
	return filepath.Join(u.opts.Dir, u.opts.TargetFile)
}

// Run performs one update. Any returned error is fatal for the run; a
// missing start marker is reported before the event source is queried.
func (u *Updater) Run(ctx context.Context) (Result, error) {
	path := u.path()
	doc, err := section.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	if _, _, err := section.Locate(doc, u.opts.Markers); err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	lines, stats := u.collector.Collect(ctx, u.source)
	log.Info("collected activity", "lines", len(lines), "pages", stats.Pages, "events", stats.Inspected)
	if len(lines) < u.collector.Limit {
		log.Debug("fewer eligible events than requested", "want", u.collector.Limit, "have", len(lines), "eligible", stats.Eligible)
	}

	if len(lines) == 0 {
		return u.keepAlive(ctx, stats)
	}

	patched, err := section.Patch(doc, u.opts.Markers, lines, u.opts.Patch)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	res := Result{Lines: lines, Mode: patched.Mode, Stats: stats}
	if !patched.Changed {
		return finish(res, OutcomeUnchanged), nil
	}

	if err := section.WriteFile(path, patched.Lines); err != nil {
		return Result{}, err
	}
	log.Info("updated document", "path", path, "mode", patched.Mode.String())
	if u.opts.NoCommit {
		return finish(res, OutcomeWritten), nil
	}

	commit, err := u.publish(ctx, u.opts.CommitMessage, lines, publisher.Request{
		Dir:   u.opts.Dir,
		Paths: []string{u.opts.TargetFile},
	})
	if err != nil {
		return Result{}, err
	}
	res.Commit = commit
	if !commit.Committed {
		return finish(res, OutcomeUnchanged), nil
	}
	return finish(res, OutcomeCommitted), nil
}

func (u *Updater) keepAlive(ctx context.Context, stats activity.Stats) (Result, error) {
	res := Result{Stats: stats}
	if u.opts.KeepAliveDays <= 0 || u.opts.NoCommit {
		return finish(res, OutcomeNoActivity), nil
	}
	if u.publisher == nil {
		return Result{}, errors.New("keep-alive commit requires a publisher")
	}

	last, err := u.publisher.LastCommit(ctx, u.opts.Dir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read last commit time: %w", err)
	}
	threshold := time.Duration(u.opts.KeepAliveDays) * 24 * time.Hour
	if age := u.opts.Now().Sub(last); age < threshold {
		log.Debug("skipping keep-alive commit", "last_commit", last.Format(time.RFC3339), "days", u.opts.KeepAliveDays)
		return finish(res, OutcomeNoActivity), nil
	}

	commit, err := u.publish(ctx, u.opts.KeepAliveMessage, nil, publisher.Request{
		Dir:        u.opts.Dir,
		AllowEmpty: true,
	})
	if err != nil {
		return Result{}, err
	}
	res.Commit = commit
	return finish(res, OutcomeKeptAlive), nil
}

func (u *Updater) publish(ctx context.Context, tmpl string, lines []string, req publisher.Request) (publisher.Result, error) {
	if u.publisher == nil {
		return publisher.Result{}, errors.New("no publisher configured")
	}
	msg, err := message.Render(tmpl, message.Data{
		User:  u.opts.User,
		File:  filepath.ToSlash(u.opts.TargetFile),
		Lines: lines,
		Date:  u.opts.Now(),
	})
	if err != nil {
		return publisher.Result{}, err
	}
	req.Message = msg
	req.Author = u.opts.Author
	req.Push = u.opts.Push
	req.Token = u.opts.Token

	res, err := u.publisher.Publish(ctx, req)
	if err != nil {
		return res, fmt.Errorf("failed to publish with %s: %w", u.publisher.Name(), err)
	}
	log.Info("published", "publisher", u.publisher.Name(), "committed", res.Committed, "pushed", res.Pushed, "hash", res.Hash)
	return res, nil
}

func finish(res Result, o Outcome) Result {
	res.Outcome = o
	res.Message = o.String()
	return res
}
