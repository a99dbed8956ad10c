package github

import (
	"time"

	"github.com/google/go-github/v68/github"
)

// RateLimitStatus is the quota reported alongside an API response.
type RateLimitStatus struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// rateLimitFromResponse extracts the quota; ok is false when the response
// carried no rate limit headers.
func rateLimitFromResponse(resp *github.Response) (RateLimitStatus, bool) {
	if resp == nil || resp.Rate.Limit == 0 {
		return RateLimitStatus{}, false
	}
	return RateLimitStatus{
		Limit:     resp.Rate.Limit,
		Remaining: resp.Rate.Remaining,
		Reset:     resp.Rate.Reset.Time,
	}, true
}
