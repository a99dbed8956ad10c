// Package redact masks credentials in text that is about to be logged or
// printed, such as git output quoting an authenticated remote URL.
package redact

import (
	"regexp"
	"strings"
)

// Replacement is substituted for every masked value.
const Replacement = "***REDACTED***"

var (
	// GitHub token formats: classic, OAuth, user-to-server, server-to-server,
	// refresh and fine-grained personal access tokens.
	githubTokenRe = regexp.MustCompile(`\b(ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9_]{30,255}\b|\bgithub_pat_[A-Za-z0-9_]{22,255}\b`)
	urlUserinfoRe = regexp.MustCompile(`(https?://)[^/\s:@]+(:[^/\s@]*)?@`)
	authHeaderRe  = regexp.MustCompile(`(?i)(authorization\s*:\s*(?:bearer|token|basic)\s+)\S+`)
)

// Redactor masks a fixed set of known secrets plus well-known credential shapes.
type Redactor struct {
	secrets []string
}

// New creates a Redactor for the given secret values. Empty values are ignored.
func New(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		if s = strings.TrimSpace(s); s != "" {
			r.secrets = append(r.secrets, s)
		}
	}
	return r
}

// String returns s with every credential replaced.
func (r *Redactor) String(s string) string {
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, Replacement)
	}
	s = urlUserinfoRe.ReplaceAllString(s, "${1}"+Replacement+"@")
	s = authHeaderRe.ReplaceAllString(s, "${1}"+Replacement)
	return githubTokenRe.ReplaceAllString(s, Replacement)
}

// Error wraps err so that its message is redacted. errors.Is and errors.As
// still see the original error.
func (r *Redactor) Error(err error) error {
	if err == nil {
		return nil
	}
	return &redactedError{err: err, msg: r.String(err.Error())}
}

type redactedError struct {
	err error
	msg string
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }
