package githubapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"

	"tpmtools/pkg/project"
)

type graphqlProjectField struct {
	Common struct {
		Name string
	} `graphql:"... on ProjectV2FieldCommon"`
}

type graphqlActor struct {
	Login string
}

type graphqlProjectItem struct {
	ID      string
	Content struct {
		TypeName string `graphql:"__typename"`

		DraftIssue struct {
			Title string
		} `graphql:"... on DraftIssue"`

		Issue struct {
			Title     string
			Number    int
			State     githubv4.IssueState
			URL       string
			CreatedAt time.Time
			UpdatedAt time.Time
			Milestone *struct {
				Title string
			}
			Assignees struct {
				Nodes []graphqlActor
			} `graphql:"assignees(first: 10)"`
			Labels struct {
				Nodes []struct {
					Name string
				}
			} `graphql:"labels(first: 20)"`
		} `graphql:"... on Issue"`

		PullRequest struct {
			Title     string
			Number    int
			State     githubv4.PullRequestState
			URL       string
			CreatedAt time.Time
			UpdatedAt time.Time
			Milestone *struct {
				Title string
			}
			Assignees struct {
				Nodes []graphqlActor
			} `graphql:"assignees(first: 10)"`
			Labels struct {
				Nodes []struct {
					Name string
				}
			} `graphql:"labels(first: 20)"`
		} `graphql:"... on PullRequest"`
	}

	FieldValues struct {
		Nodes []graphqlFieldValue
	} `graphql:"fieldValues(first: 50)"`
}

type graphqlFieldValue struct {
	TypeName string `graphql:"__typename"`

	Text struct {
		Text  string
		Field graphqlProjectField
	} `graphql:"... on ProjectV2ItemFieldTextValue"`

	SingleSelect struct {
		Name  string
		Field graphqlProjectField
	} `graphql:"... on ProjectV2ItemFieldSingleSelectValue"`

	Number struct {
		Number float64
		Field  graphqlProjectField
	} `graphql:"... on ProjectV2ItemFieldNumberValue"`

	Date struct {
		Date  string
		Field graphqlProjectField
	} `graphql:"... on ProjectV2ItemFieldDateValue"`

	Iteration struct {
		Title     string
		StartDate string
		Field     graphqlProjectField
	} `graphql:"... on ProjectV2ItemFieldIterationValue"`

	Milestone struct {
		Milestone struct {
			Title string
		}
		Field graphqlProjectField
	} `graphql:"... on ProjectV2ItemFieldMilestoneValue"`

	Repository struct {
		Repository struct {
			NameWithOwner string
		}
		Field graphqlProjectField
	} `graphql:"... on ProjectV2ItemFieldRepositoryValue"`

	Users struct {
		Users struct {
			Nodes []graphqlActor
		} `graphql:"users(first: 10)"`
		Field graphqlProjectField
	} `graphql:"... on ProjectV2ItemFieldUserValue"`
}

// ResolveOrgProjectID turns an organization login and a project number
// into the project's node ID.
func (c *Client) ResolveOrgProjectID(ctx context.Context, org string, number int) (string, error) {
	var q struct {
		RateLimit    rateLimit
		Organization struct {
			ProjectV2 struct {
				ID string
			} `graphql:"projectV2(number: $number)"`
		} `graphql:"organization(login: $login)"`
	}

	variables := map[string]interface{}{
		"login":  githubv4.String(org),
		"number": githubv4.Int(number),
	}

	err := c.gql.Query(ctx, &q, variables)
	c.countRequest(org, q.RateLimit.Cost, q.RateLimit.Remaining)

	if err != nil {
		return "", err
	}

	if q.Organization.ProjectV2.ID == "" {
		return "", fmt.Errorf("project %d not found for org %s", number, org)
	}

	return q.Organization.ProjectV2.ID, nil
}

// ResolveUserProjectID is ResolveOrgProjectID for user-owned projects.
func (c *Client) ResolveUserProjectID(ctx context.Context, user string, number int) (string, error) {
	var q struct {
		RateLimit rateLimit
		User      struct {
			ProjectV2 struct {
				ID string
			} `graphql:"projectV2(number: $number)"`
		} `graphql:"user(login: $login)"`
	}

	variables := map[string]interface{}{
		"login":  githubv4.String(user),
		"number": githubv4.Int(number),
	}

	err := c.gql.Query(ctx, &q, variables)
	c.countRequest(user, q.RateLimit.Cost, q.RateLimit.Remaining)

	if err != nil {
		return "", err
	}

	if q.User.ProjectV2.ID == "" {
		return "", fmt.Errorf("project %d not found for user %s", number, user)
	}

	return q.User.ProjectV2.ID, nil
}

// ListProjectItems pages through a project's items, up to maxItems
// (<= 0 means no limit). It returns the project title and the items.
func (c *Client) ListProjectItems(ctx context.Context, projectID string, maxItems int) (string, []project.Item, error) {
	var cursor *githubv4.String

	title := ""
	items := []project.Item{}

	for {
		first := 100
		if maxItems > 0 {
			remaining := maxItems - len(items)
			if remaining <= 0 {
				break
			}
			if remaining < first {
				first = remaining
			}
		}

		var q struct {
			RateLimit rateLimit
			Node      struct {
				ProjectV2 struct {
					Title string
					Items struct {
						PageInfo struct {
							EndCursor   githubv4.String
							HasNextPage bool
						}
						Nodes []graphqlProjectItem
					} `graphql:"items(first: $first, after: $cursor)"`
				} `graphql:"... on ProjectV2"`
			} `graphql:"node(id: $project)"`
		}

		variables := map[string]interface{}{
			"project": githubv4.ID(projectID),
			"first":   githubv4.Int(first),
			"cursor":  cursor,
		}

		err := c.gql.Query(ctx, &q, variables)
		c.countRequest(projectID, q.RateLimit.Cost, q.RateLimit.Remaining)

		c.log.WithFields(logrus.Fields{
			"project": projectID,
			"items":   len(items),
			"cost":    q.RateLimit.Cost,
		}).Debugf("ListProjectItems()")

		if err != nil {
			return "", nil, err
		}

		if q.Node.ProjectV2.Title == "" && len(q.Node.ProjectV2.Items.Nodes) == 0 {
			return "", nil, errors.New("project not found or not accessible")
		}

		title = q.Node.ProjectV2.Title

		for _, node := range q.Node.ProjectV2.Items.Nodes {
			items = append(items, convertProjectItem(node))
		}

		if !q.Node.ProjectV2.Items.PageInfo.HasNextPage {
			break
		}

		endCursor := q.Node.ProjectV2.Items.PageInfo.EndCursor
		cursor = &endCursor

		if err := c.sleep(ctx, c.pageDelay); err != nil {
			return "", nil, err
		}
	}

	return title, items, nil
}

func convertProjectItem(node graphqlProjectItem) project.Item {
	item := project.Item{
		ID: node.ID,
	}

	switch node.Content.TypeName {
	case project.TypeIssue:
		issue := node.Content.Issue
		created := issue.CreatedAt
		updated := issue.UpdatedAt
		content := &project.Content{
			Type:      project.TypeIssue,
			Title:     issue.Title,
			Number:    issue.Number,
			State:     string(issue.State),
			URL:       issue.URL,
			Assignees: logins(issue.Assignees.Nodes),
			CreatedAt: &created,
			UpdatedAt: &updated,
		}
		for _, label := range issue.Labels.Nodes {
			content.Labels = append(content.Labels, label.Name)
		}
		if issue.Milestone != nil {
			content.Milestone = issue.Milestone.Title
		}
		item.Content = content

	case project.TypePullRequest:
		pr := node.Content.PullRequest
		created := pr.CreatedAt
		updated := pr.UpdatedAt
		content := &project.Content{
			Type:      project.TypePullRequest,
			Title:     pr.Title,
			Number:    pr.Number,
			State:     string(pr.State),
			URL:       pr.URL,
			Assignees: logins(pr.Assignees.Nodes),
			CreatedAt: &created,
			UpdatedAt: &updated,
		}
		for _, label := range pr.Labels.Nodes {
			content.Labels = append(content.Labels, label.Name)
		}
		if pr.Milestone != nil {
			content.Milestone = pr.Milestone.Title
		}
		item.Content = content

	case project.TypeDraftIssue:
		item.Content = &project.Content{
			Type:  project.TypeDraftIssue,
			Title: node.Content.DraftIssue.Title,
		}
	}

	for _, fv := range node.FieldValues.Nodes {
		if converted, ok := convertFieldValue(fv); ok {
			item.FieldValues = append(item.FieldValues, converted)
		}
	}

	return item
}

func convertFieldValue(fv graphqlFieldValue) (project.FieldValue, bool) {
	switch fv.TypeName {
	case "ProjectV2ItemFieldTextValue":
		return project.FieldValue{Field: fv.Text.Field.Common.Name, Value: fv.Text.Text}, true
	case "ProjectV2ItemFieldSingleSelectValue":
		return project.FieldValue{Field: fv.SingleSelect.Field.Common.Name, Value: fv.SingleSelect.Name}, true
	case "ProjectV2ItemFieldNumberValue":
		return project.FieldValue{Field: fv.Number.Field.Common.Name, Value: formatNumber(fv.Number.Number)}, true
	case "ProjectV2ItemFieldDateValue":
		return project.FieldValue{Field: fv.Date.Field.Common.Name, Value: fv.Date.Date}, true
	case "ProjectV2ItemFieldIterationValue":
		return project.FieldValue{
			Field:     fv.Iteration.Field.Common.Name,
			Value:     fv.Iteration.Title,
			StartDate: fv.Iteration.StartDate,
		}, true
	case "ProjectV2ItemFieldMilestoneValue":
		return project.FieldValue{Field: fv.Milestone.Field.Common.Name, Value: fv.Milestone.Milestone.Title}, true
	case "ProjectV2ItemFieldRepositoryValue":
		return project.FieldValue{Field: fv.Repository.Field.Common.Name, Value: fv.Repository.Repository.NameWithOwner}, true
	case "ProjectV2ItemFieldUserValue":
		return project.FieldValue{
			Field: fv.Users.Field.Common.Name,
			Value: strings.Join(logins(fv.Users.Users.Nodes), ", "),
		}, true
	}

	return project.FieldValue{}, false
}

func formatNumber(value float64) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}

	return fmt.Sprintf("%g", value)
}

func logins(actors []graphqlActor) []string {
	names := make([]string, 0, len(actors))
	for _, actor := range actors {
		names = append(names, actor.Login)
	}

	return names
}

