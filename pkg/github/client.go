// Package github reads a user's public activity through the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com/"

	// DefaultPerPage is the largest page the events API serves.
	DefaultPerPage = 100

	defaultTimeout = 30 * time.Second
)

// Option configures NewClient.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL points the client at another API root (GitHub Enterprise or a test server).
func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// WithTimeout bounds every API call.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithHTTPClient supplies the underlying transport, e.g. a recorder in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// NewClient returns a go-github client. An empty token gives anonymous access.
func NewClient(token string, opts ...Option) (*github.Client, error) {
	o := clientOptions{baseURL: DefaultBaseURL, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.httpClient
	if base == nil {
		base = &http.Client{}
	}
	base.Timeout = o.timeout

	httpClient := base
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		httpClient.Timeout = o.timeout
	}

	client := github.NewClient(httpClient)
	if o.baseURL != "" && o.baseURL != DefaultBaseURL {
		u, err := url.Parse(o.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", o.baseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}
	return client, nil
}
