package slack

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "2025-04-15 16:09:00", formatTimestamp("1744733340.000200"))
	assert.Equal(t, "1970-01-01 00:00:00", formatTimestamp("0"))

	// non-numeric timestamps pass through untouched
	assert.Equal(t, "not-a-timestamp", formatTimestamp("not-a-timestamp"))
	assert.Equal(t, "", formatTimestamp(""))
}

const searchResponse = `{
	"ok": true,
	"messages": {
		"total": 1,
		"matches": [
			{
				"type": "message",
				"channel": {"id": "C123", "name": "ops"},
				"user": "U123",
				"username": "alice",
				"ts": "1744733340.000200",
				"text": "deploy finished",
				"permalink": "https://example.slack.com/archives/C123/p1"
			}
		]
	}
}`

func testSearcher(serverURL string) *Searcher {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	return &Searcher{
		api:   slackapi.New("xoxp-test", slackapi.OptionAPIURL(serverURL+"/")),
		log:   log,
		count: 5,
		delay: time.Millisecond,
		users: map[string]string{},
	}
}

func TestSearchRecoversFromRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	searcher := testSearcher(server.URL)

	result, err := searcher.search(context.Background(), "deploy", false)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "ops", result.Results[0].Channel)
	assert.Equal(t, "alice", result.Results[0].User)
	assert.Equal(t, "2025-04-15 16:09:00", result.Results[0].Timestamp)
	assert.Equal(t, "deploy finished", result.Results[0].Text)
}

func TestSearchGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	searcher := testSearcher(server.URL)

	_, err := searcher.search(context.Background(), "deploy", false)
	require.Error(t, err)

	var rateLimited *slackapi.RateLimitedError
	assert.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, maxSearchAttempts, attempts)
}

func TestRunSkipsFailedQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("query") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	searcher := testSearcher(server.URL)

	export := searcher.Run(context.Background(), []string{"broken", "deploy"}, false)

	require.Len(t, export.Queries, 1)
	assert.Equal(t, "deploy", export.Queries[0].Query)
}
