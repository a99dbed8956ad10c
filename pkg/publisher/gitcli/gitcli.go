// Package gitcli publishes through the system git binary, configuring the
// identity, staging, committing and pushing in that fixed order.
package gitcli

import (
	"context"
	"fmt"
	"time"

	"github.com/holon-run/readme-activity/pkg/git"
	"github.com/holon-run/readme-activity/pkg/log"
	"github.com/holon-run/readme-activity/pkg/publisher"
)

// Name is the registry name of this backend.
const Name = "git"

// Publisher runs git commands in the request directory.
type Publisher struct{}

// New creates a system git publisher.
func New() *Publisher {
	return &Publisher{}
}

// Name implements publisher.Publisher.
func (p *Publisher) Name() string {
	return Name
}

// Publish implements publisher.Publisher. A commit with no staged changes is
// reported as Result{Committed: false} rather than an error.
func (p *Publisher) Publish(ctx context.Context, req publisher.Request) (publisher.Result, error) {
	client := git.NewClient(req.Dir)

	if err := client.SetIdentity(ctx, req.Author.Name, req.Author.Email); err != nil {
		return publisher.Result{}, err
	}
	if len(req.Paths) > 0 {
		if err := client.Add(ctx, req.Paths...); err != nil {
			return publisher.Result{}, fmt.Errorf("failed to stage changes: %w", err)
		}
	}
	if err := client.Commit(ctx, req.Message, git.CommitOptions{AllowEmpty: req.AllowEmpty}); err != nil {
		if git.IsNothingToCommit(err) {
			log.Info("nothing to commit", "dir", req.Dir)
			return publisher.Result{}, nil
		}
		return publisher.Result{}, fmt.Errorf("failed to commit: %w", err)
	}

	result := publisher.Result{Committed: true}
	if hash, err := client.HeadSHA(ctx); err == nil {
		result.Hash = hash
	}

	if req.Push {
		if err := client.Push(ctx); err != nil {
			return result, fmt.Errorf("failed to push: %w", err)
		}
		result.Pushed = true
	}
	return result, nil
}

// LastCommit implements publisher.Publisher.
func (p *Publisher) LastCommit(ctx context.Context, dir string) (time.Time, error) {
	return git.NewClient(dir).LastCommitTime(ctx)
}

func init() {
	if err := publisher.Register(New()); err != nil {
		panic(err)
	}
}
