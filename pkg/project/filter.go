package project

// Filter selects project items for the PR summary notification.
type Filter struct {
	ExcludedStatuses   []string
	ExcludedMilestones []string
}

// OpenPullRequests keeps items whose content is an open pull request
// and whose project Status field and milestone are not excluded.
func (f Filter) OpenPullRequests(items []Item) []Item {
	kept := []Item{}

	for _, item := range items {
		content := item.Content
		if content == nil || content.Type != TypePullRequest {
			continue
		}

		if content.State != "OPEN" {
			continue
		}

		if contains(f.ExcludedStatuses, item.Field("Status")) {
			continue
		}

		if contains(f.ExcludedMilestones, content.Milestone) {
			continue
		}

		kept = append(kept, item)
	}

	return kept
}

func contains(values []string, value string) bool {
	if value == "" {
		return false
	}

	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}

	return false
}
