// Package report builds the team pull-request report from issue
// search results.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v72/github"
)

// PullRequest is one row of the report.
type PullRequest struct {
	User    string
	Repo    string
	Number  int
	Title   string
	Status  string
	URL     string
	Created time.Time
	Updated time.Time
}

// FromIssue converts an issue-search result into a report row. The
// repository name is derived from the repository API URL since the
// search API does not include it directly.
func FromIssue(issue *github.Issue) PullRequest {
	status := "ready for review"
	if issue.GetDraft() {
		status = "draft"
	}

	return PullRequest{
		User:    issue.GetUser().GetLogin(),
		Repo:    repoFromURL(issue.GetRepositoryURL()),
		Number:  issue.GetNumber(),
		Title:   issue.GetTitle(),
		Status:  status,
		URL:     issue.GetHTMLURL(),
		Created: issue.GetCreatedAt().Time,
		Updated: issue.GetUpdatedAt().Time,
	}
}

// repoFromURL extracts "owner/name" from an API repository URL like
// "https://api.github.com/repos/owner/name".
func repoFromURL(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return url
	}

	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

// Sort orders rows by last update, newest first.
func Sort(prs []PullRequest) {
	sort.SliceStable(prs, func(i, j int) bool {
		return prs[i].Updated.After(prs[j].Updated)
	})
}

// Totals counts open PRs per user, preserving the order users first
// appear in the rows.
func Totals(prs []PullRequest) ([]string, map[string]int) {
	order := []string{}
	counts := map[string]int{}

	for _, pr := range prs {
		if _, seen := counts[pr.User]; !seen {
			order = append(order, pr.User)
		}

		counts[pr.User]++
	}

	return order, counts
}

const dateFormat = "2006-01-02"

func headers() []string {
	return []string{"User", "Repository", "PR", "Title", "Created", "Updated", "Status"}
}

func row(pr PullRequest) []string {
	return []string{
		pr.User,
		pr.Repo,
		fmt.Sprintf("#%d", pr.Number),
		pr.Title,
		pr.Created.Format(dateFormat),
		pr.Updated.Format(dateFormat),
		pr.Status,
	}
}
