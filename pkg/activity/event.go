// Package activity turns a user's public GitHub events into the short,
// ranked list of markdown lines shown in a README.
package activity

import (
	"fmt"
	"strconv"
)

// URLPrefix is the web root used when a record carries no link of its own.
const URLPrefix = "https://github.com"

// Kind identifies the type of an upstream event.
type Kind string

// Event kinds that produce a line. Every other kind is ignored.
const (
	KindIssueComment Kind = "IssueCommentEvent"
	KindIssues       Kind = "IssuesEvent"
	KindPullRequest  Kind = "PullRequestEvent"
	KindRelease      Kind = "ReleaseEvent"
)

// Known reports whether k is one of the kinds the serializer handles.
func (k Kind) Known() bool {
	switch k {
	case KindIssueComment, KindIssues, KindPullRequest, KindRelease:
		return true
	}
	return false
}

// Event is one unit of upstream public activity, reduced to the fields
// needed to render it.
type Event struct {
	Kind   Kind
	Action string
	Target Ref
	// Repo is the owning repository as "owner/name".
	Repo string
	// ActorLogin is the pull request author. Empty when unknown.
	ActorLogin string
	Merged     bool
}

type refKind int

const (
	refRepo refKind = iota
	refIssue
	refPull
	refRelease
)

// Ref is a linkable reference to an issue, pull request, release or repository.
type Ref struct {
	kind   refKind
	repo   string
	number int
	label  string
	url    string
}

// IssueRef references issue n of repo. An empty url is derived from repo.
func IssueRef(repo string, n int, url string) Ref {
	if url == "" {
		url = fmt.Sprintf("%s/%s/issues/%d", URLPrefix, repo, n)
	}
	return Ref{kind: refIssue, repo: repo, number: n, label: "#" + strconv.Itoa(n), url: url}
}

// PullRef references pull request n of repo. An empty url is derived from repo.
func PullRef(repo string, n int, url string) Ref {
	if url == "" {
		url = fmt.Sprintf("%s/%s/pull/%d", URLPrefix, repo, n)
	}
	return Ref{kind: refPull, repo: repo, number: n, label: "#" + strconv.Itoa(n), url: url}
}

// ReleaseRef references a release, labelled by name and falling back to tag.
func ReleaseRef(repo, name, tag, url string) Ref {
	label := name
	if label == "" {
		label = tag
	}
	if url == "" {
		url = fmt.Sprintf("%s/%s/releases/tag/%s", URLPrefix, repo, tag)
	}
	return Ref{kind: refRelease, repo: repo, label: label, url: url}
}

// RepoRef references a repository page by its "owner/name" identifier.
func RepoRef(name string) Ref {
	return Ref{kind: refRepo, repo: name, label: name, url: URLPrefix + "/" + name}
}

// IsZero reports whether r was never constructed.
func (r Ref) IsZero() bool {
	return r.label == "" && r.url == ""
}

// Number returns the issue or pull request number, zero for other refs.
func (r Ref) Number() int {
	return r.number
}

// URL returns the link target.
func (r Ref) URL() string {
	return r.url
}

// Markdown renders r as a markdown link.
func (r Ref) Markdown() string {
	return "[" + r.label + "](" + r.url + ")"
}
