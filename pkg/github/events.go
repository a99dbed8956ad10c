package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"
	"github.com/holon-run/readme-activity/pkg/activity"
	"github.com/holon-run/readme-activity/pkg/log"
)

// EventSource serves a user's public events page by page.
type EventSource struct {
	client  *github.Client
	user    string
	perPage int
}

// NewEventSource returns a source for user. perPage <= 0 selects DefaultPerPage.
func NewEventSource(client *github.Client, user string, perPage int) *EventSource {
	if perPage <= 0 || perPage > DefaultPerPage {
		perPage = DefaultPerPage
	}
	return &EventSource{client: client, user: user, perPage: perPage}
}

// PageSize implements activity.Source.
func (s *EventSource) PageSize() int {
	return s.perPage
}

// Page implements activity.Source.
func (s *EventSource) Page(ctx context.Context, page int) ([]activity.Event, error) {
	opts := &github.ListOptions{Page: page, PerPage: s.perPage}
	raw, resp, err := s.client.Activity.ListEventsPerformedByUser(ctx, s.user, true, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list public events for %s (page %d): %w", s.user, page, err)
	}

	if rl, ok := rateLimitFromResponse(resp); ok {
		log.Debug("rate limit", "remaining", rl.Remaining, "limit", rl.Limit, "reset", rl.Reset)
	}

	events := make([]activity.Event, 0, len(raw))
	for _, e := range raw {
		events = append(events, convertEvent(e))
	}
	return events, nil
}

// convertEvent maps an API event onto activity.Event. Payloads that cannot
// be decoded leave Target unset so the serializer rejects the event.
func convertEvent(e *github.Event) activity.Event {
	out := activity.Event{
		Kind: activity.Kind(e.GetType()),
		Repo: e.GetRepo().GetName(),
	}
	if !out.Kind.Known() {
		return out
	}

	payload, err := e.ParsePayload()
	if err != nil {
		log.Debug("skipping event with malformed payload", "id", e.GetID(), "type", e.GetType(), "error", err)
		return out
	}

	switch p := payload.(type) {
	case *github.IssueCommentEvent:
		out.Action = p.GetAction()
		if p.Issue != nil {
			// The comment link lands on the comment itself; fall back to the issue.
			link := p.GetComment().GetHTMLURL()
			if link == "" {
				link = p.GetIssue().GetHTMLURL()
			}
			out.Target = activity.IssueRef(out.Repo, p.GetIssue().GetNumber(), link)
		}
	case *github.IssuesEvent:
		out.Action = p.GetAction()
		if p.Issue != nil {
			out.Target = activity.IssueRef(out.Repo, p.GetIssue().GetNumber(), p.GetIssue().GetHTMLURL())
		}
	case *github.PullRequestEvent:
		out.Action = p.GetAction()
		if pr := p.GetPullRequest(); pr != nil {
			number := pr.GetNumber()
			if number == 0 {
				number = p.GetNumber()
			}
			out.Target = activity.PullRef(out.Repo, number, pr.GetHTMLURL())
			out.Merged = pr.GetMerged()
			out.ActorLogin = pr.GetUser().GetLogin()
		}
	case *github.ReleaseEvent:
		out.Action = p.GetAction()
		if r := p.GetRelease(); r != nil {
			out.Target = activity.ReleaseRef(out.Repo, r.GetName(), r.GetTagName(), r.GetHTMLURL())
		}
	}
	return out
}
