package githubapi

import (
	"context"
	"fmt"

	"github.com/google/go-github/v72/github"
	"github.com/sirupsen/logrus"

	"tpmtools/pkg/milestone"
)

func convertMilestone(api *github.Milestone) milestone.Existing {
	existing := milestone.Existing{
		Number:      api.GetNumber(),
		Name:        api.GetTitle(),
		Description: api.GetDescription(),
		State:       api.GetState(),
	}

	if api.DueOn != nil {
		due := api.DueOn.Time
		existing.DueOn = &due
	}

	return existing
}

func (c *Client) GetMilestone(ctx context.Context, owner string, name string, number int) (*milestone.Existing, error) {
	var result *github.Milestone

	err := c.withRetry(ctx, "GetMilestone", func() (*github.Response, error) {
		var resp *github.Response
		var err error

		result, resp, err = c.rest.Issues.GetMilestone(ctx, owner, name, number)
		if resp != nil {
			c.countRequest(fmt.Sprintf("%s/%s", owner, name), 1, resp.Rate.Remaining)
		}

		return resp, err
	})
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"owner":     owner,
		"name":      name,
		"milestone": number,
	}).Debugf("GetMilestone()")

	existing := convertMilestone(result)

	return &existing, nil
}

// ListMilestones fetches every milestone of the repository, open and
// closed, paging through the list endpoint with the fixed delay.
func (c *Client) ListMilestones(ctx context.Context, owner string, name string) ([]milestone.Existing, error) {
	opts := &github.MilestoneListOptions{
		State: "all",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	milestones := []milestone.Existing{}

	for {
		var page []*github.Milestone
		var resp *github.Response

		err := c.withRetry(ctx, "ListMilestones", func() (*github.Response, error) {
			var err error

			page, resp, err = c.rest.Issues.ListMilestones(ctx, owner, name, opts)
			if resp != nil {
				c.countRequest(fmt.Sprintf("%s/%s", owner, name), 1, resp.Rate.Remaining)
			}

			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, api := range page {
			milestones = append(milestones, convertMilestone(api))
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage

		if err := c.sleep(ctx, c.pageDelay); err != nil {
			return nil, err
		}
	}

	c.log.WithFields(logrus.Fields{
		"owner":      owner,
		"name":       name,
		"milestones": len(milestones),
	}).Debugf("ListMilestones()")

	return milestones, nil
}

func (c *Client) CreateMilestone(ctx context.Context, owner string, name string, action milestone.Action) (*milestone.Existing, error) {
	payload := &github.Milestone{
		Title: github.Ptr(action.Name),
	}

	if action.Description != "" {
		payload.Description = github.Ptr(action.Description)
	}

	if action.DueOn != nil {
		payload.DueOn = &github.Timestamp{Time: *action.DueOn}
	}

	var result *github.Milestone

	err := c.withRetry(ctx, "CreateMilestone", func() (*github.Response, error) {
		var resp *github.Response
		var err error

		result, resp, err = c.rest.Issues.CreateMilestone(ctx, owner, name, payload)
		if resp != nil {
			c.countRequest(fmt.Sprintf("%s/%s", owner, name), 1, resp.Rate.Remaining)
		}

		return resp, err
	})
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"owner":     owner,
		"name":      name,
		"milestone": result.GetNumber(),
	}).Debugf("CreateMilestone()")

	existing := convertMilestone(result)

	return &existing, nil
}

// UpdateMilestone patches the matched milestone with the action's
// resolved title and description. The description is always sent so
// that a cleared field actually empties it on the remote side; the due
// date is only sent when the action carries one.
func (c *Client) UpdateMilestone(ctx context.Context, owner string, name string, action milestone.Action) (*milestone.Existing, error) {
	if action.Target == nil {
		return nil, fmt.Errorf("update for milestone %q has no target", action.Name)
	}

	payload := &github.Milestone{
		Title:       github.Ptr(action.Name),
		Description: github.Ptr(action.Description),
	}

	if action.DueOn != nil {
		payload.DueOn = &github.Timestamp{Time: *action.DueOn}
	}

	var result *github.Milestone

	err := c.withRetry(ctx, "UpdateMilestone", func() (*github.Response, error) {
		var resp *github.Response
		var err error

		result, resp, err = c.rest.Issues.EditMilestone(ctx, owner, name, action.Target.Number, payload)
		if resp != nil {
			c.countRequest(fmt.Sprintf("%s/%s", owner, name), 1, resp.Rate.Remaining)
		}

		return resp, err
	})
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"owner":     owner,
		"name":      name,
		"milestone": result.GetNumber(),
	}).Debugf("UpdateMilestone()")

	existing := convertMilestone(result)

	return &existing, nil
}
