package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tpmtools/pkg/config"
	"tpmtools/pkg/githubapi"
	"tpmtools/pkg/report"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Team reporting commands",
	}

	cmd.AddCommand(newReportPRsCommand(), newReportReposCommand())

	return cmd
}

func newReportPRsCommand() *cobra.Command {
	var (
		users  []string
		token  string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "prs",
		Short: "Report all open PRs created by the given team members",
		RunE: func(cmd *cobra.Command, args []string) error {
			githubToken := tokenOr(token, "GITHUB_TOKEN")
			if githubToken == "" {
				return errors.New("GitHub token required, set GITHUB_TOKEN or use --token")
			}

			if len(users) == 0 {
				return errors.New("at least one --user is required")
			}

			ctx := cmd.Context()

			api, err := githubapi.NewClient(ctx, log.WithField("component", "client"), githubToken)
			if err != nil {
				return err
			}

			prs := []report.PullRequest{}
			failed := 0

			for _, user := range users {
				log.WithField("user", user).Info("Fetching open PRs…")

				issues, err := api.SearchOpenPullRequests(ctx, user)
				if err != nil {
					log.WithField("user", user).Warnf("Skipping user: %v", err)
					failed++

					continue
				}

				for _, issue := range issues {
					prs = append(prs, report.FromIssue(issue))
				}
			}

			report.Sort(prs)

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			switch format {
			case "table":
				err = report.WriteTable(out, prs)
			case "markdown":
				err = report.WriteMarkdown(out, prs)
			default:
				return fmt.Errorf("unknown format %q, must be table or markdown", format)
			}
			if err != nil {
				return err
			}

			api.LogRequestStats()

			if failed > 0 {
				return fmt.Errorf("%d user(s) could not be fetched", failed)
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&users, "user", nil, "GitHub username to include (repeatable)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token (or set GITHUB_TOKEN)")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func newReportReposCommand() *cobra.Command {
	var (
		token  string
		format string
		output string
		months int
	)

	cmd := &cobra.Command{
		Use:   "repos owner/name [owner/name...]",
		Short: "Report open PR counts and recent PR activity per repository",
		Long: `Counts the open, non-draft PRs of each repository and lists every PR
that was created or updated within the last N months, newest first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			githubToken := tokenOr(token, "GITHUB_TOKEN")
			if githubToken == "" {
				return errors.New("GitHub token required, set GITHUB_TOKEN or use --token")
			}

			// argument problems are fatal before any network call
			repos := make([]config.Repository, 0, len(args))
			for _, arg := range args {
				repo, err := config.ParseRepository(arg)
				if err != nil {
					return fmt.Errorf("%q: %w", arg, err)
				}

				repos = append(repos, repo)
			}

			ctx := cmd.Context()

			api, err := githubapi.NewClient(ctx, log.WithField("component", "client"), githubToken)
			if err != nil {
				return err
			}

			cutoff := time.Now().AddDate(0, 0, -months*30)

			counts := []report.RepoCount{}
			recent := []report.PullRequest{}
			failed := 0

			for _, repo := range repos {
				log.WithField("repo", repo.String()).Info("Fetching PRs…")

				prs, err := api.ListPullRequests(ctx, repo.Owner, repo.Name, "all")
				if err != nil {
					log.WithField("repo", repo.String()).Warnf("Skipping repository: %v", err)
					failed++

					continue
				}

				rows := make([]report.PullRequest, 0, len(prs))
				for _, pr := range prs {
					rows = append(rows, report.FromPullRequest(repo.String(), pr))
				}

				counts = append(counts, report.RepoCount{
					Repo:  repo.String(),
					Count: report.CountOpenNonDraft(rows),
				})
				recent = append(recent, report.Recent(rows, cutoff)...)
			}

			report.Sort(recent)

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			switch format {
			case "table":
				err = report.WriteRepoTable(out, counts, recent, months)
			case "markdown":
				err = report.WriteRepoMarkdown(out, counts, recent, months)
			default:
				return fmt.Errorf("unknown format %q, must be table or markdown", format)
			}
			if err != nil {
				return err
			}

			api.LogRequestStats()

			if failed > 0 {
				return fmt.Errorf("%d repository(ies) could not be fetched", failed)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token (or set GITHUB_TOKEN)")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&months, "months", 3, "how many months of PR activity to include")

	return cmd
}
