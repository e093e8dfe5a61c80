// SPDX-FileCopyrightText: 2026 Christoph Mewes
// SPDX-License-Identifier: MIT

// Package githubapi wraps the GitHub GraphQL and REST APIs behind a
// single client with request accounting, bounded retries and a fixed
// inter-page delay to stay under the abuse limits.
package githubapi

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type rateLimit struct {
	Cost      int
	Remaining int
}

const (
	// maxAttempts bounds the retries for a single REST call.
	maxAttempts = 3

	// defaultRetryBackoff is the fixed wait between retries of a
	// rate-limited or failed call.
	defaultRetryBackoff = 20 * time.Second

	// defaultPageDelay is the fixed wait between successive pages of
	// a list or search call.
	defaultPageDelay = 500 * time.Millisecond
)

type Client struct {
	gql  *githubv4.Client
	rest *github.Client
	log  logrus.FieldLogger

	retryBackoff time.Duration
	pageDelay    time.Duration

	requests        map[string]int
	totalCosts      map[string]int
	remainingPoints int
}

func NewClient(ctx context.Context, log logrus.FieldLogger, token string) (*Client, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	src := oauth2.StaticTokenSource(
		&oauth2.Token{
			AccessToken: token,
		},
	)
	httpClient := oauth2.NewClient(ctx, src)

	return &Client{
		gql:          githubv4.NewClient(httpClient),
		rest:         github.NewClient(httpClient),
		log:          log,
		retryBackoff: defaultRetryBackoff,
		pageDelay:    defaultPageDelay,
		requests:     map[string]int{},
		totalCosts:   map[string]int{},
	}, nil
}

func (c *Client) GetRemainingPoints() int {
	return c.remainingPoints
}

func (c *Client) GetRequestCounts() map[string]int {
	return c.requests
}

func (c *Client) GetTotalCosts() map[string]int {
	return c.totalCosts
}

func (c *Client) countRequest(key string, cost int, remaining int) {
	val := c.requests[key]
	c.requests[key] = val + 1

	val = c.totalCosts[key]
	c.totalCosts[key] = val + cost

	c.remainingPoints = remaining
}

// LogRequestStats writes the per-target request and cost counters
// accumulated during the run.
func (c *Client) LogRequestStats() {
	for key, count := range c.requests {
		c.log.WithFields(logrus.Fields{
			"target":   key,
			"requests": count,
			"cost":     c.totalCosts[key],
		}).Debug("API usage")
	}
}

// withRetry runs fn up to maxAttempts times, waiting the fixed backoff
// between attempts. Only rate-limit responses and server errors are
// retried; everything else is surfaced immediately.
func (c *Client) withRetry(ctx context.Context, op string, fn func() (*github.Response, error)) error {
	for attempt := 1; ; attempt++ {
		resp, err := fn()
		if err == nil {
			return nil
		}

		if attempt >= maxAttempts || !retryable(err, resp) {
			return err
		}

		c.log.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
		}).Warnf("Request failed, retrying in %s: %v", c.retryBackoff, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryBackoff):
		}
	}
}

func retryable(err error, resp *github.Response) bool {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	return resp != nil && resp.StatusCode >= 500
}

// sleep waits for the given duration unless the context ends first.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
