// Package message renders commit messages, which may be text/template
// templates over the run that produced the commit.
package message

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Data is available to commit message templates.
type Data struct {
	// User is the GitHub user whose activity is listed.
	User string
	// File is the updated document, relative to the work tree.
	File string
	// Lines are the activity lines written, without numbering.
	Lines []string
	// Count is len(Lines).
	Count int
	// Date is the time of the run.
	Date time.Time
}

var funcs = template.FuncMap{
	"first": func(lines []string) string {
		if len(lines) == 0 {
			return ""
		}
		return lines[0]
	},
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}

func parse(text string) (*template.Template, error) {
	return template.New("message").Option("missingkey=error").Funcs(funcs).Parse(text)
}

// Validate reports whether text is a usable message template.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("commit message is empty")
	}
	if _, err := parse(text); err != nil {
		return fmt.Errorf("invalid commit message template: %w", err)
	}
	return nil
}

// Render expands text with data. Plain text without template actions is
// returned unchanged.
func Render(text string, data Data) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := parse(text)
	if err != nil {
		return "", fmt.Errorf("invalid commit message template: %w", err)
	}
	if data.Count == 0 {
		data.Count = len(data.Lines)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render commit message: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
