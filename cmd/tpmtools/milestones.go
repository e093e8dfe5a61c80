package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tpmtools/pkg/config"
	"tpmtools/pkg/githubapi"
	"tpmtools/pkg/milestone"
)

func newMilestonesCommand() *cobra.Command {
	var (
		configPath string
		token      string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Create or update GitHub milestones from a JSON configuration",
		Long: `Reconciles the milestone specs in the configuration file against every
configured repository: existing milestones are matched by name (with
support for renames and reference milestones), missing ones are
created. With --dry-run the planned changes are only printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			githubToken := tokenOr(token, "GITHUB_TOKEN")
			if githubToken == "" {
				return errors.New("GitHub token required, set GITHUB_TOKEN or use --token")
			}

			// configuration problems are fatal before any network call
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			api, err := githubapi.NewClient(ctx, log.WithField("component", "client"), githubToken)
			if err != nil {
				return err
			}

			runner := &milestone.Runner{
				API:    api,
				Log:    log.WithField("component", "milestones"),
				Out:    cmd.OutOrStdout(),
				DryRun: dryRun,
			}

			results := runner.Run(ctx, cfg)
			runner.PrintSummary(results)
			api.LogRequestStats()

			failed := 0
			for _, result := range results {
				if result.Err != nil {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d milestone operation(s) failed", failed)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the milestones.json configuration file")
	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token (or set GITHUB_TOKEN)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without making changes")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}
