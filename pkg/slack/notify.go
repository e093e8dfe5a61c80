package slack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	slackapi "github.com/slack-go/slack"

	"tpmtools/pkg/project"
)

const (
	// maxBlocksPerMessage is Slack's hard cap on blocks per message;
	// longer summaries are split into parts.
	maxBlocksPerMessage = 50

	// fieldTextLimit truncates long field values in PR sections.
	fieldTextLimit = 100

	// messageDelay is the pause between successive webhook posts.
	messageDelay = 1 * time.Second
)

// PullRequestMessages renders the filtered PRs into one or more Block
// Kit webhook messages, splitting when a single message would exceed
// the block limit.
func PullRequestMessages(heading string, prs []project.Item) []*slackapi.WebhookMessage {
	footer := contextBlock(fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02")))

	if len(prs) == 0 {
		return []*slackapi.WebhookMessage{
			{
				Text: fmt.Sprintf("%s: No open PRs matching filters", heading),
				Blocks: &slackapi.Blocks{
					BlockSet: []slackapi.Block{
						headerBlock(heading),
						sectionBlock("No open PRs matching filters."),
						footer,
					},
				},
			},
		}
	}

	sections := make([]slackapi.Block, 0, len(prs))
	for _, pr := range prs {
		sections = append(sections, pullRequestBlock(pr))
	}

	// a header and a footer block per message leave this much room for PRs
	perMessage := maxBlocksPerMessage - 2

	var chunks [][]slackapi.Block
	for len(sections) > 0 {
		size := perMessage
		if len(sections) < size {
			size = len(sections)
		}

		chunks = append(chunks, sections[:size])
		sections = sections[size:]
	}

	messages := make([]*slackapi.WebhookMessage, 0, len(chunks))

	for i, chunk := range chunks {
		title := heading
		if len(chunks) > 1 {
			title = fmt.Sprintf("%s (Part %d/%d)", heading, i+1, len(chunks))
		}

		blocks := append([]slackapi.Block{headerBlock(title)}, chunk...)
		blocks = append(blocks, footer)

		messages = append(messages, &slackapi.WebhookMessage{
			Text:   fmt.Sprintf("%s: %d open PR(s)", heading, len(prs)),
			Blocks: &slackapi.Blocks{BlockSet: blocks},
		})
	}

	return messages
}

func pullRequestBlock(pr project.Item) slackapi.Block {
	content := pr.Content

	text := fmt.Sprintf("*<%s|%s>*\n%s", content.URL, truncate(content.Title, fieldTextLimit), prLabel(content))

	if status := pr.Field("Status"); status != "" {
		text += fmt.Sprintf("\n*Status:* %s", truncate(status, fieldTextLimit))
	}

	if content.Milestone != "" {
		text += fmt.Sprintf("\n*Milestone:* %s", truncate(content.Milestone, fieldTextLimit))
	}

	if len(content.Assignees) > 0 {
		text += fmt.Sprintf("\n*Assignees:* %s", truncate(strings.Join(content.Assignees, ", "), fieldTextLimit))
	}

	return sectionBlock(text)
}

func prLabel(content *project.Content) string {
	if content.Number != 0 {
		return fmt.Sprintf("#%d", content.Number)
	}

	return "(draft)"
}

func headerBlock(text string) slackapi.Block {
	return slackapi.NewHeaderBlock(slackapi.NewTextBlockObject(slackapi.PlainTextType, text, false, false))
}

func sectionBlock(text string) slackapi.Block {
	return slackapi.NewSectionBlock(slackapi.NewTextBlockObject(slackapi.MarkdownType, text, false, false), nil, nil)
}

func contextBlock(text string) slackapi.Block {
	return slackapi.NewContextBlock("", slackapi.NewTextBlockObject(slackapi.MarkdownType, text, false, false))
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}

	return string(runes[:max-3]) + "..."
}

// Notifier posts webhook messages sequentially with a fixed delay in
// between to stay under the webhook rate limit.
type Notifier struct {
	WebhookURL string
	Log        logrus.FieldLogger
	Delay      time.Duration
}

func (n *Notifier) Post(ctx context.Context, messages []*slackapi.WebhookMessage) error {
	delay := n.Delay
	if delay == 0 {
		delay = messageDelay
	}

	for i, message := range messages {
		if len(messages) > 1 {
			n.Log.Infof("Posting message %d of %d…", i+1, len(messages))
		}

		if err := slackapi.PostWebhookContext(ctx, n.WebhookURL, message); err != nil {
			return fmt.Errorf("failed to post message %d of %d: %w", i+1, len(messages), err)
		}

		if i < len(messages)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil
}
