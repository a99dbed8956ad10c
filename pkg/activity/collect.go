package activity

import (
	"context"

	"github.com/holon-run/readme-activity/pkg/log"
)

// DefaultLimit is the number of lines rendered when none is configured.
const DefaultLimit = 5

// DefaultBotLogins are the pull request authors dropped by ExcludeBots when
// no explicit list is configured.
var DefaultBotLogins = []string{"dependabot[bot]"}

// Source yields pages of events, newest first. Pages are 1-based.
type Source interface {
	Page(ctx context.Context, page int) ([]Event, error)
	PageSize() int
}

// Filter keeps an event when it returns true.
type Filter func(Event) bool

// KnownKinds keeps only the kinds the serializer renders.
func KnownKinds(e Event) bool {
	return e.Kind.Known()
}

// ExcludeBots drops pull request events authored by one of logins. Events
// with no author information are kept.
func ExcludeBots(logins ...string) Filter {
	bots := make(map[string]struct{}, len(logins))
	for _, l := range logins {
		bots[l] = struct{}{}
	}
	return func(e Event) bool {
		if e.Kind != KindPullRequest || e.ActorLogin == "" {
			return true
		}
		_, isBot := bots[e.ActorLogin]
		return !isBot
	}
}

// Stats describes what a Collect call inspected.
type Stats struct {
	Pages     int
	Inspected int
	Eligible  int
	// FetchErr is the error that ended pagination early, if any.
	FetchErr error
}

// Collector gathers up to Limit distinct lines from a Source.
type Collector struct {
	Limit      int
	Filters    []Filter
	Serializer *Serializer
}

// NewCollector builds a Collector with the canonical KnownKinds stage followed
// by extra filters.
func NewCollector(limit int, s *Serializer, extra ...Filter) *Collector {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if s == nil {
		s = NewSerializer(EmojiGlyphs)
	}
	return &Collector{
		Limit:      limit,
		Filters:    append([]Filter{KnownKinds}, extra...),
		Serializer: s,
	}
}

// Collect pulls pages in order until Limit distinct lines are gathered, a
// short page signals the end of data, or a fetch fails. A failed fetch ends
// pagination without failing the collection.
func (c *Collector) Collect(ctx context.Context, src Source) ([]string, Stats) {
	var (
		lines []string
		stats Stats
		seen  = make(map[string]struct{})
	)

	for page := 1; len(lines) < c.Limit; page++ {
		events, err := src.Page(ctx, page)
		if err != nil {
			log.Info("stopping pagination", "page", page, "error", err)
			stats.FetchErr = err
			break
		}
		stats.Pages++
		stats.Inspected += len(events)

		for _, e := range events {
			if len(lines) == c.Limit {
				break
			}
			if !c.keep(e) {
				continue
			}
			line, ok := c.Serializer.Line(e)
			if !ok {
				continue
			}
			stats.Eligible++
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			lines = append(lines, line)
		}

		log.Debug("fetched events page", "page", page, "events", len(events), "lines", len(lines))
		if len(events) < src.PageSize() {
			break
		}
	}

	return lines, stats
}

func (c *Collector) keep(e Event) bool {
	for _, f := range c.Filters {
		if !f(e) {
			return false
		}
	}
	return true
}
