package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tpmtools/pkg/githubapi"
	"tpmtools/pkg/project"
	"tpmtools/pkg/slack"
)

// projectSelection holds the flags identifying a Projects v2 board.
type projectSelection struct {
	projectID     string
	org           string
	user          string
	url           string
	projectNumber int
}

func (s *projectSelection) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.projectID, "project-id", "", "project node ID (e.g. PVT_kwDO...)")
	cmd.Flags().StringVar(&s.org, "org", "", "organization name (requires --project-number)")
	cmd.Flags().StringVar(&s.user, "user", "", "user name for user projects (requires --project-number)")
	cmd.Flags().StringVar(&s.url, "url", "", "GitHub Projects URL")
	cmd.Flags().IntVar(&s.projectNumber, "project-number", 0, "project number (required with --org or --user)")
}

// resolve turns whatever selection flags were given into a project
// node ID.
func (s *projectSelection) resolve(ctx context.Context, api *githubapi.Client) (string, error) {
	switch {
	case s.projectID != "":
		return s.projectID, nil

	case s.url != "":
		kind, owner, number, err := project.ParseURL(s.url)
		if err != nil {
			return "", err
		}

		if kind == project.OwnerUser {
			return api.ResolveUserProjectID(ctx, owner, number)
		}

		return api.ResolveOrgProjectID(ctx, owner, number)

	case s.org != "":
		if s.projectNumber == 0 {
			return "", errors.New("--project-number is required with --org")
		}

		return api.ResolveOrgProjectID(ctx, s.org, s.projectNumber)

	case s.user != "":
		if s.projectNumber == 0 {
			return "", errors.New("--project-number is required with --user")
		}

		return api.ResolveUserProjectID(ctx, s.user, s.projectNumber)
	}

	return "", errors.New("one of --project-id, --org, --user or --url is required")
}

func newProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "GitHub Projects v2 commands",
	}

	cmd.AddCommand(newProjectExportCommand(), newProjectNotifyCommand())

	return cmd
}

func newProjectExportCommand() *cobra.Command {
	var (
		selection projectSelection
		token     string
		output    string
		format    string
		maxItems  int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a GitHub Projects v2 board to CSV, TSV, JSON or Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			githubToken := tokenOr(token, "GITHUB_TOKEN")
			if githubToken == "" {
				return errors.New("GitHub token required, set GITHUB_TOKEN or use --token")
			}

			ctx := cmd.Context()

			api, err := githubapi.NewClient(ctx, log.WithField("component", "client"), githubToken)
			if err != nil {
				return err
			}

			projectID, err := selection.resolve(ctx, api)
			if err != nil {
				return err
			}

			log.WithField("project", projectID).Info("Fetching project items…")

			title, items, err := api.ListProjectItems(ctx, projectID, maxItems)
			if err != nil {
				return err
			}

			if len(items) == 0 {
				log.Info("No items found in project.")
				return nil
			}

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			switch format {
			case "csv":
				err = project.WriteCSV(out, items)
			case "tsv":
				err = project.WriteTSV(out, items)
			case "json":
				err = project.WriteJSON(out, items)
			case "markdown":
				err = project.WriteMarkdown(out, title, items)
			default:
				return fmt.Errorf("unknown format %q, must be csv, tsv, json or markdown", format)
			}
			if err != nil {
				return err
			}

			log.WithField("items", len(items)).Info("Export complete.")
			api.LogRequestStats()

			return nil
		},
	}

	selection.register(cmd)
	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token (or set GITHUB_TOKEN)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv, tsv, json or markdown")
	cmd.Flags().IntVar(&maxItems, "max-items", 1000, "maximum number of items to fetch")

	return cmd
}

func newProjectNotifyCommand() *cobra.Command {
	var (
		selection         projectSelection
		token             string
		webhook           string
		heading           string
		excludeStatuses   []string
		excludeMilestones []string
		maxItems          int
		dryRun            bool
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post a summary of a project's open PRs to a Slack webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			githubToken := tokenOr(token, "GITHUB_TOKEN")
			if githubToken == "" {
				return errors.New("GitHub token required, set GITHUB_TOKEN or use --token")
			}

			webhookURL := tokenOr(webhook, "SLACK_WEBHOOK_URL")
			if !dryRun && webhookURL == "" {
				return errors.New("Slack webhook URL required, set SLACK_WEBHOOK_URL or use --webhook (or use --dry-run)")
			}

			ctx := cmd.Context()

			api, err := githubapi.NewClient(ctx, log.WithField("component", "client"), githubToken)
			if err != nil {
				return err
			}

			projectID, err := selection.resolve(ctx, api)
			if err != nil {
				return err
			}

			log.WithField("project", projectID).Info("Fetching project items…")

			_, items, err := api.ListProjectItems(ctx, projectID, maxItems)
			if err != nil {
				return err
			}

			filter := project.Filter{
				ExcludedStatuses:   excludeStatuses,
				ExcludedMilestones: excludeMilestones,
			}

			prs := filter.OpenPullRequests(items)
			log.WithField("prs", len(prs)).Infof("Filtered to %d PRs (from %d items).", len(prs), len(items))

			messages := slack.PullRequestMessages(heading, prs)

			if dryRun {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "DRY RUN - %d message(s) that would be sent\n", len(messages))

				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				for _, message := range messages {
					if err := encoder.Encode(message); err != nil {
						return err
					}
				}

				return nil
			}

			notifier := &slack.Notifier{
				WebhookURL: webhookURL,
				Log:        log.WithField("component", "notifier"),
			}

			if err := notifier.Post(ctx, messages); err != nil {
				return err
			}

			log.Info("Posted to Slack.")

			return nil
		},
	}

	selection.register(cmd)
	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token (or set GITHUB_TOKEN)")
	cmd.Flags().StringVar(&webhook, "webhook", "", "Slack incoming webhook URL (or set SLACK_WEBHOOK_URL)")
	cmd.Flags().StringVar(&heading, "heading", "Daily PR Summary", "heading for the Slack message")
	cmd.Flags().StringArrayVar(&excludeStatuses, "exclude-status", nil, "project Status values to exclude (repeatable)")
	cmd.Flags().StringArrayVar(&excludeMilestones, "exclude-milestone", nil, "milestone titles to exclude (repeatable)")
	cmd.Flags().IntVar(&maxItems, "max-items", 1000, "maximum number of items to fetch")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the messages without posting to Slack")

	return cmd
}

// openOutput returns the writer for an export, the command's stdout
// when no file is given.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}
