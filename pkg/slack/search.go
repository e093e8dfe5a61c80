// Package slack covers the Slack side of the tooling: message search
// with chain-log filtering, JSON exports with Markdown rendering, and
// Block Kit webhook notifications.
package slack

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	slackapi "github.com/slack-go/slack"
)

const (
	// maxSearchAttempts bounds retries of a rate-limited search call.
	maxSearchAttempts = 3

	// queryDelay is the fixed wait between successive search calls.
	queryDelay = 1 * time.Second
)

type Searcher struct {
	api   *slackapi.Client
	log   logrus.FieldLogger
	count int
	delay time.Duration
	users map[string]string
}

// NewSearcher creates a searcher issuing count results per query.
func NewSearcher(token string, count int, log logrus.FieldLogger) *Searcher {
	return &Searcher{
		api:   slackapi.New(token),
		log:   log,
		count: count,
		delay: queryDelay,
		users: map[string]string{},
	}
}

// Run executes the queries sequentially and collects the results into
// an Export. Chain-epoch log messages are dropped unless keepChain is
// set. A failed query is logged and skipped; the remaining queries
// still run.
func (s *Searcher) Run(ctx context.Context, queries []string, keepChain bool) *Export {
	export := &Export{}

	for i, query := range queries {
		if i > 0 {
			select {
			case <-ctx.Done():
				return export
			case <-time.After(s.delay):
			}
		}

		result, err := s.search(ctx, query, keepChain)
		if err != nil {
			s.log.WithField("query", query).Warnf("Search failed: %v", err)
			continue
		}

		export.Queries = append(export.Queries, *result)
	}

	return export
}

func (s *Searcher) search(ctx context.Context, query string, keepChain bool) (*QueryResult, error) {
	s.log.WithField("query", query).Info("Searching…")

	params := slackapi.NewSearchParameters()
	params.Count = s.count
	params.Sort = "timestamp"
	params.SortDirection = "desc"

	var matches *slackapi.SearchMessages

	for attempt := 1; ; attempt++ {
		var err error

		matches, err = s.api.SearchMessagesContext(ctx, query, params)
		if err == nil {
			break
		}

		var rateLimited *slackapi.RateLimitedError
		if !errors.As(err, &rateLimited) || attempt >= maxSearchAttempts {
			return nil, err
		}

		s.log.WithField("query", query).Warnf("Rate limited, waiting %s…", rateLimited.RetryAfter)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(rateLimited.RetryAfter):
		}
	}

	result := &QueryResult{
		Query: query,
		Total: matches.Total,
	}

	dropped := 0

	for _, match := range matches.Matches {
		if !keepChain && IsChainMessage(match.Text) {
			dropped++
			continue
		}

		result.Results = append(result.Results, Result{
			Channel:   match.Channel.Name,
			User:      s.userName(ctx, match),
			Timestamp: formatTimestamp(match.Timestamp),
			Text:      match.Text,
			Permalink: match.Permalink,
		})
	}

	if dropped > 0 {
		s.log.WithFields(logrus.Fields{
			"query":   query,
			"dropped": dropped,
		}).Debug("Dropped chain-epoch log messages.")
	}

	return result, nil
}

func (s *Searcher) userName(ctx context.Context, match slackapi.SearchMessage) string {
	if match.Username != "" {
		return match.Username
	}

	if match.User == "" {
		return "Unknown"
	}

	if name, ok := s.users[match.User]; ok {
		return name
	}

	user, err := s.api.GetUserInfoContext(ctx, match.User)
	if err != nil {
		// fall back to the raw ID, but don't keep asking
		s.users[match.User] = match.User
		return match.User
	}

	s.users[match.User] = user.Name

	return user.Name
}

// formatTimestamp renders a Slack "seconds.micros" message timestamp
// as a readable UTC date, falling back to the raw value.
func formatTimestamp(ts string) string {
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return ts
	}

	return time.Unix(int64(seconds), 0).UTC().Format("2006-01-02 15:04:05")
}
