package githubapi

import (
	"context"
	"fmt"

	"github.com/google/go-github/v72/github"
	"github.com/sirupsen/logrus"
)

// ListPullRequests fetches the repository's pull requests in the given
// state ("open", "closed" or "all"), most recently updated first,
// paging with the fixed delay.
func (c *Client) ListPullRequests(ctx context.Context, owner string, name string, state string) ([]*github.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:     state,
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	prs := []*github.PullRequest{}

	for {
		var page []*github.PullRequest
		var resp *github.Response

		err := c.withRetry(ctx, "ListPullRequests", func() (*github.Response, error) {
			var err error

			page, resp, err = c.rest.PullRequests.List(ctx, owner, name, opts)
			if resp != nil {
				c.countRequest(fmt.Sprintf("%s/%s", owner, name), 1, resp.Rate.Remaining)
			}

			return resp, err
		})
		if err != nil {
			return nil, err
		}

		prs = append(prs, page...)

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage

		if err := c.sleep(ctx, c.pageDelay); err != nil {
			return nil, err
		}
	}

	c.log.WithFields(logrus.Fields{
		"owner": owner,
		"name":  name,
		"state": state,
		"prs":   len(prs),
	}).Debugf("ListPullRequests()")

	return prs, nil
}
