// Package section maintains a marker-delimited region of a line-oriented
// document, rewriting it with as little textual churn as possible.
package section

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrMarkerNotFound is returned when the document has no start marker.
var ErrMarkerNotFound = errors.New("marker not found")

// Markers are the literal comment lines bounding the region.
type Markers struct {
	Start string
	End   string
}

// DefaultMarkers bound the activity region in a profile README.
var DefaultMarkers = Markers{
	Start: "<!--START_SECTION:activity-->",
	End:   "<!--END_SECTION:activity-->",
}

// Mode tells how Patch produced its result.
type Mode int

const (
	// ModeUnchanged means the document is returned as is.
	ModeUnchanged Mode = iota
	// ModeCreated means the end marker was missing and has been added.
	ModeCreated
	// ModeInserted means lines were inserted into an empty region.
	ModeInserted
	// ModeOverwritten means existing non-blank lines were rewritten in place.
	ModeOverwritten
)

func (m Mode) String() string {
	switch m {
	case ModeUnchanged:
		return "unchanged"
	case ModeCreated:
		return "created"
	case ModeInserted:
		return "inserted"
	case ModeOverwritten:
		return "overwritten"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Options tune the steady-state rewrite.
type Options struct {
	// Grow lets the overwrite pass append lines that do not fit in the
	// existing region and drop stale lines the new list no longer covers.
	// Without it the region keeps its line count.
	Grow bool
}

// Result is the patched document.
type Result struct {
	Lines   []string
	Changed bool
	Mode    Mode
}

// Number formats lines as a 1-based ordered markdown list.
func Number(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strconv.Itoa(i+1) + ". " + l
	}
	return out
}

// Locate returns the indexes of the start and end marker lines. end is -1
// when only the start marker exists; it is only searched after start.
func Locate(doc []string, m Markers) (start, end int, err error) {
	start = indexTrimmed(doc, m.Start, 0)
	if start < 0 {
		return -1, -1, fmt.Errorf("%w: %s", ErrMarkerNotFound, m.Start)
	}
	return start, indexTrimmed(doc, m.End, start+1), nil
}

func indexTrimmed(doc []string, marker string, from int) int {
	for i := from; i < len(doc); i++ {
		if strings.TrimSpace(doc[i]) == marker {
			return i
		}
	}
	return -1
}

// Patch writes newLines, numbered, into the region of doc bounded by m.
// doc is never modified; Result.Lines is a fresh slice.
func Patch(doc []string, m Markers, newLines []string, opts Options) (Result, error) {
	start, end, err := Locate(doc, m)
	if err != nil {
		return Result{}, err
	}
	if len(newLines) == 0 {
		return unchanged(doc), nil
	}

	numbered := Number(newLines)
	before := doc[:start+1]

	if end < 0 {
		return finish(doc, ModeCreated, before, numbered, []string{m.End}, doc[start+1:]), nil
	}

	region := doc[start+1 : end]
	after := doc[end:]

	if strings.TrimSpace(strings.Join(region, "\n")) == strings.TrimSpace(strings.Join(numbered, "\n")) {
		return unchanged(doc), nil
	}
	if blank(region) {
		// Blank-only regions are treated as empty; the blanks stay above the list.
		return finish(doc, ModeInserted, before, region, numbered, after), nil
	}
	return finish(doc, ModeOverwritten, before, overwrite(region, numbered, opts.Grow), after), nil
}

func blank(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// overwrite replaces non-blank region lines with numbered lines in order,
// leaving blank lines where they are.
func overwrite(region, numbered []string, grow bool) []string {
	out := make([]string, 0, len(region)+len(numbered))
	next := 0
	for _, line := range region {
		switch {
		case strings.TrimSpace(line) == "":
			out = append(out, line)
		case next < len(numbered):
			out = append(out, numbered[next])
			next++
		case grow:
			// stale entry beyond the new list
		default:
			out = append(out, line)
		}
	}
	if grow && next < len(numbered) {
		out = append(out, numbered[next:]...)
	}
	return out
}

func unchanged(doc []string) Result {
	return Result{Lines: slices.Clone(doc), Mode: ModeUnchanged}
}

func finish(doc []string, mode Mode, parts ...[]string) Result {
	lines := slices.Concat(parts...)
	if slices.Equal(lines, doc) {
		return Result{Lines: lines, Mode: ModeUnchanged}
	}
	return Result{Lines: lines, Changed: true, Mode: mode}
}
