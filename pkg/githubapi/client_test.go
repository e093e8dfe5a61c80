package githubapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	return &Client{
		log:          log,
		retryBackoff: time.Millisecond,
		pageDelay:    time.Millisecond,
		requests:     map[string]int{},
		totalCosts:   map[string]int{},
	}
}

func responseWithStatus(status int) *github.Response {
	return &github.Response{
		Response: &http.Response{
			StatusCode: status,
		},
	}
}

func TestRetryable(t *testing.T) {
	testcases := []struct {
		name     string
		err      error
		resp     *github.Response
		expected bool
	}{
		{
			name:     "rate limit",
			err:      &github.RateLimitError{},
			resp:     responseWithStatus(http.StatusForbidden),
			expected: true,
		},
		{
			name:     "abuse rate limit",
			err:      &github.AbuseRateLimitError{},
			resp:     responseWithStatus(http.StatusForbidden),
			expected: true,
		},
		{
			name:     "server error",
			err:      errors.New("boom"),
			resp:     responseWithStatus(http.StatusBadGateway),
			expected: true,
		},
		{
			name:     "not found",
			err:      errors.New("not found"),
			resp:     responseWithStatus(http.StatusNotFound),
			expected: false,
		},
		{
			name:     "no response",
			err:      errors.New("dial tcp: connection refused"),
			resp:     nil,
			expected: false,
		},
	}

	for _, testcase := range testcases {
		t.Run(testcase.name, func(t *testing.T) {
			assert.Equal(t, testcase.expected, retryable(testcase.err, testcase.resp))
		})
	}
}

func TestWithRetryRecoversFromRateLimit(t *testing.T) {
	client := testClient()

	attempts := 0
	err := client.withRetry(context.Background(), "test", func() (*github.Response, error) {
		attempts++
		if attempts == 1 {
			return responseWithStatus(http.StatusForbidden), &github.RateLimitError{Message: "slow down"}
		}

		return responseWithStatus(http.StatusOK), nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	client := testClient()

	attempts := 0
	err := client.withRetry(context.Background(), "test", func() (*github.Response, error) {
		attempts++

		return responseWithStatus(http.StatusServiceUnavailable), errors.New("upstream down")
	})

	require.Error(t, err)
	assert.Equal(t, maxAttempts, attempts)
}

func TestWithRetryDoesNotRetryClientErrors(t *testing.T) {
	client := testClient()

	attempts := 0
	err := client.withRetry(context.Background(), "test", func() (*github.Response, error) {
		attempts++

		return responseWithStatus(http.StatusUnprocessableEntity), errors.New("validation failed")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryHonorsContext(t *testing.T) {
	client := testClient()
	client.retryBackoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.withRetry(ctx, "test", func() (*github.Response, error) {
		return responseWithStatus(http.StatusBadGateway), errors.New("upstream down")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCountRequest(t *testing.T) {
	client := testClient()

	client.countRequest("milestones", 1, 4999)
	client.countRequest("milestones", 1, 4998)
	client.countRequest("projects", 3, 4995)

	assert.Equal(t, map[string]int{"milestones": 2, "projects": 1}, client.GetRequestCounts())
	assert.Equal(t, map[string]int{"milestones": 2, "projects": 3}, client.GetTotalCosts())
	assert.Equal(t, 4995, client.GetRemainingPoints())
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(context.Background(), logrus.New(), "")
	assert.Error(t, err)
}
