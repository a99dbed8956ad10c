// Package publisher records a README update in version control.
//
// Backends register themselves by name from their package init, the same way
// database/sql drivers do; the CLI selects one from configuration.
package publisher

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/holon-run/readme-activity/pkg/git"
)

// Request describes one commit.
type Request struct {
	// Dir is the repository work tree.
	Dir string
	// Paths are staged, relative to Dir.
	Paths   []string
	Message string
	Author  git.Author
	// AllowEmpty records a commit even when Paths did not change.
	AllowEmpty bool
	// Push sends the commit to the upstream of the current branch.
	Push bool
	// Token authenticates pushes for backends that do not use the git credential helper.
	Token string
}

// Result reports what Publish did.
type Result struct {
	// Committed is false when there was nothing to commit.
	Committed bool
	Pushed    bool
	Hash      string
}

// Publisher commits and pushes.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, req Request) (Result, error)
	// LastCommit returns the time of the most recent commit in dir.
	LastCommit(ctx context.Context, dir string) (time.Time, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Publisher)
)

// Register makes p available by its name.
func Register(p Publisher) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := p.Name()
	if _, dup := registry[name]; dup {
		return fmt.Errorf("publisher %q already registered", name)
	}
	registry[name] = p
	return nil
}

// Get returns the publisher registered as name.
func Get(name string) (Publisher, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown publisher %q (available: %v)", name, namesLocked())
	}
	return p, nil
}

// Names lists registered publishers in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
