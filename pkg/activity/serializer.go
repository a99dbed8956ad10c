package activity

import (
	"unicode"
	"unicode/utf8"
)

// Glyphs is the set of leading markers placed in front of each line.
type Glyphs struct {
	Comment string
	// Issue is keyed by action; IssueDefault covers the rest.
	Issue        map[string]string
	IssueDefault string
	PR           map[string]string
	PRDefault    string
	Merged       string
	Release      string
}

// EmojiGlyphs is the default glyph set.
var EmojiGlyphs = Glyphs{
	Comment:      "🗣",
	Issue:        map[string]string{"opened": "❗", "closed": "🔒", "reopened": "🔓"},
	IssueDefault: "❗",
	PR:           map[string]string{"opened": "💪", "reopened": "🔓"},
	PRDefault:    "❌",
	Merged:       "🎉",
	Release:      "🚀",
}

// PlainGlyphs renders lines without any leading marker.
var PlainGlyphs = Glyphs{}

// GlyphsByName resolves a style name from configuration.
func GlyphsByName(name string) (Glyphs, bool) {
	switch name {
	case "", "emoji":
		return EmojiGlyphs, true
	case "plain":
		return PlainGlyphs, true
	}
	return Glyphs{}, false
}

// Serializer renders events as single markdown lines.
type Serializer struct {
	glyphs Glyphs
}

// NewSerializer returns a Serializer using g.
func NewSerializer(g Glyphs) *Serializer {
	return &Serializer{glyphs: g}
}

// Line renders e. It returns false when the event kind is not rendered or the
// record lacks the reference it needs.
func (s *Serializer) Line(e Event) (string, bool) {
	if !e.Kind.Known() || e.Target.IsZero() || e.Repo == "" {
		return "", false
	}

	ref := e.Target.Markdown()
	repo := RepoRef(e.Repo).Markdown()

	switch e.Kind {
	case KindIssueComment:
		return prefix(s.glyphs.Comment, "Commented on "+ref+" in "+repo), true
	case KindIssues:
		glyph := lookup(s.glyphs.Issue, e.Action, s.glyphs.IssueDefault)
		return prefix(glyph, capitalize(e.Action)+" issue "+ref+" in "+repo), true
	case KindPullRequest:
		if e.Merged {
			return prefix(s.glyphs.Merged, "Merged PR "+ref+" in "+repo), true
		}
		glyph := lookup(s.glyphs.PR, e.Action, s.glyphs.PRDefault)
		return prefix(glyph, capitalize(e.Action)+" PR "+ref+" in "+repo), true
	case KindRelease:
		return prefix(s.glyphs.Release, capitalize(e.Action)+" release "+ref+" in "+repo), true
	}
	return "", false
}

func lookup(m map[string]string, action, fallback string) string {
	if g, ok := m[action]; ok {
		return g
	}
	return fallback
}

func prefix(glyph, text string) string {
	if glyph == "" {
		return text
	}
	return glyph + " " + text
}

// capitalize upper-cases the first rune only ("opened" -> "Opened").
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
