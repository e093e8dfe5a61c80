package githubapi

import (
	"context"
	"fmt"

	"github.com/google/go-github/v72/github"
	"github.com/sirupsen/logrus"
)

// maxSearchPages caps issue-search pagination at 1000 results, the
// same limit the search API itself enforces.
const maxSearchPages = 10

// SearchOpenPullRequests returns all open pull requests authored by
// the given user, most recently updated first.
func (c *Client) SearchOpenPullRequests(ctx context.Context, author string) ([]*github.Issue, error) {
	query := fmt.Sprintf("type:pr state:open author:%s", author)

	opts := &github.SearchOptions{
		Sort:  "updated",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	issues := []*github.Issue{}

	for page := 0; page < maxSearchPages; page++ {
		var result *github.IssuesSearchResult
		var resp *github.Response

		err := c.withRetry(ctx, "SearchIssues", func() (*github.Response, error) {
			var err error

			result, resp, err = c.rest.Search.Issues(ctx, query, opts)
			if resp != nil {
				c.countRequest("search:"+author, 1, resp.Rate.Remaining)
			}

			return resp, err
		})
		if err != nil {
			return nil, err
		}

		issues = append(issues, result.Issues...)

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage

		if err := c.sleep(ctx, c.pageDelay); err != nil {
			return nil, err
		}
	}

	c.log.WithFields(logrus.Fields{
		"author": author,
		"prs":    len(issues),
	}).Debugf("SearchOpenPullRequests()")

	return issues, nil
}
