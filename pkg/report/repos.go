package report

import (
	"time"

	"github.com/google/go-github/v72/github"
)

// RepoCount is one row of the per-repository summary: how many open,
// non-draft pull requests the repository currently has.
type RepoCount struct {
	Repo  string
	Count int
}

// FromPullRequest converts a listed pull request into a report row.
// Closed PRs get status "closed" regardless of their draft flag.
func FromPullRequest(repo string, pr *github.PullRequest) PullRequest {
	status := "ready for review"
	if pr.GetDraft() {
		status = "draft"
	}
	if pr.GetState() == "closed" {
		status = "closed"
	}

	return PullRequest{
		User:    pr.GetUser().GetLogin(),
		Repo:    repo,
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Status:  status,
		URL:     pr.GetHTMLURL(),
		Created: pr.GetCreatedAt().Time,
		Updated: pr.GetUpdatedAt().Time,
	}
}

// CountOpenNonDraft counts the rows that are open and not drafts.
func CountOpenNonDraft(prs []PullRequest) int {
	count := 0
	for _, pr := range prs {
		if pr.Status == "ready for review" {
			count++
		}
	}

	return count
}

// Recent keeps the rows that were created or updated at or after the
// cutoff.
func Recent(prs []PullRequest, cutoff time.Time) []PullRequest {
	kept := []PullRequest{}

	for _, pr := range prs {
		if pr.Created.Before(cutoff) && pr.Updated.Before(cutoff) {
			continue
		}

		kept = append(kept, pr)
	}

	return kept
}
