// Package gogit publishes with go-git, so no git binary is needed on the
// host. Pushes authenticate with a token over HTTPS basic auth.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/holon-run/readme-activity/pkg/log"
	"github.com/holon-run/readme-activity/pkg/pathutil"
	"github.com/holon-run/readme-activity/pkg/publisher"
)

// Name is the registry name of this backend.
const Name = "go-git"

// DefaultRemote is the remote pushed to.
const DefaultRemote = "origin"

// Publisher commits through the go-git object model.
type Publisher struct {
	// Remote defaults to DefaultRemote.
	Remote string
}

// New creates a go-git publisher.
func New() *Publisher {
	return &Publisher{Remote: DefaultRemote}
}

// Name implements publisher.Publisher.
func (p *Publisher) Name() string {
	return Name
}

func open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s is not a git repository", dir)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// Publish implements publisher.Publisher.
func (p *Publisher) Publish(ctx context.Context, req publisher.Request) (publisher.Result, error) {
	repo, err := open(req.Dir)
	if err != nil {
		return publisher.Result{}, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return publisher.Result{}, fmt.Errorf("failed to get worktree: %w", err)
	}

	staged := make([]string, 0, len(req.Paths))
	for _, path := range req.Paths {
		rel, err := relativeToRoot(worktree.Filesystem.Root(), req.Dir, path)
		if err != nil {
			return publisher.Result{}, err
		}
		if _, err := worktree.Add(rel); err != nil {
			return publisher.Result{}, fmt.Errorf("failed to stage %s: %w", rel, err)
		}
		staged = append(staged, rel)
	}

	status, err := worktree.Status()
	if err != nil {
		return publisher.Result{}, fmt.Errorf("failed to get status: %w", err)
	}
	if !hasStagedChanges(status, staged) && !req.AllowEmpty {
		log.Info("nothing to commit", "dir", req.Dir)
		return publisher.Result{}, nil
	}

	hash, err := worktree.Commit(req.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  req.Author.Name,
			Email: req.Author.Email,
			When:  time.Now(),
		},
		AllowEmptyCommits: req.AllowEmpty,
	})
	if err != nil {
		return publisher.Result{}, fmt.Errorf("failed to commit: %w", err)
	}
	result := publisher.Result{Committed: true, Hash: hash.String()}

	if req.Push {
		if err := p.push(ctx, repo, req.Token); err != nil {
			return result, err
		}
		result.Pushed = true
	}
	return result, nil
}

func (p *Publisher) push(ctx context.Context, repo *git.Repository, token string) error {
	remote := p.Remote
	if remote == "" {
		remote = DefaultRemote
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	opts := &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(head.Name().String() + ":" + head.Name().String())},
	}
	if token != "" {
		opts.Auth = &http.BasicAuth{
			Username: "x-access-token",
			Password: token,
		}
	}

	if err := repo.PushContext(ctx, opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push %s to %s: %w", head.Name().Short(), remote, err)
	}
	return nil
}

// LastCommit implements publisher.Publisher.
func (p *Publisher) LastCommit(_ context.Context, dir string) (time.Time, error) {
	repo, err := open(dir)
	if err != nil {
		return time.Time{}, err
	}
	head, err := repo.Head()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	return commit.Committer.When, nil
}

// hasStagedChanges reports whether any of paths differs from HEAD in the index.
// Files outside paths are ignored so unrelated untracked files do not count.
func hasStagedChanges(status git.Status, paths []string) bool {
	for _, path := range paths {
		switch status.File(path).Staging {
		case git.Unmodified, git.Untracked:
		default:
			return true
		}
	}
	return false
}

// relativeToRoot converts path, relative to dir, into a path relative to the
// work tree root as go-git expects.
func relativeToRoot(root, dir, path string) (string, error) {
	abs, err := pathutil.Resolve(dir, path)
	if err != nil {
		return "", err
	}
	rel, err := pathutil.RelSlash(root, abs)
	if err != nil {
		return "", fmt.Errorf("%s is not in the work tree: %w", path, err)
	}
	return rel, nil
}

func init() {
	if err := publisher.Register(New()); err != nil {
		panic(err)
	}
}
