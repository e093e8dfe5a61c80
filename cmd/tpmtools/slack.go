package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tpmtools/pkg/slack"
)

func newSlackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slack",
		Short: "Slack search and export commands",
	}

	cmd.AddCommand(newSlackSearchCommand(), newSlackRenderCommand())

	return cmd
}

func newSlackSearchCommand() *cobra.Command {
	var (
		token     string
		output    string
		count     int
		keepChain bool
	)

	cmd := &cobra.Command{
		Use:   "search [queries...]",
		Short: "Search the Slack workspace and export the results as JSON",
		Long: `Runs each query against the Slack search API and writes the matching
messages as a JSON document. Queries are taken from the arguments, or
from stdin (one per line) when none are given. Automated chain-epoch
log messages are dropped unless --keep-chain-messages is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			slackToken := tokenOr(token, "SLACK_USER_TOKEN")
			if slackToken == "" {
				return errors.New("Slack user token required, set SLACK_USER_TOKEN or use --token")
			}

			queries := args
			if len(queries) == 0 {
				var err error

				queries, err = readQueries(cmd)
				if err != nil {
					return err
				}
			}

			if len(queries) == 0 {
				return errors.New("no queries provided")
			}

			searcher := slack.NewSearcher(slackToken, count, log.WithField("component", "search"))
			export := searcher.Run(cmd.Context(), queries, keepChain)

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			if err := slack.WriteExport(out, export); err != nil {
				return err
			}

			if len(export.Queries) < len(queries) {
				return fmt.Errorf("%d of %d queries failed", len(queries)-len(export.Queries), len(queries))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Slack user OAuth token (or set SLACK_USER_TOKEN)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVarP(&count, "count", "c", 10, "number of results per query")
	cmd.Flags().BoolVar(&keepChain, "keep-chain-messages", false, "keep automated chain-epoch log messages in the results")

	return cmd
}

func newSlackRenderCommand() *cobra.Command {
	var (
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a JSON search export as Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()

			if input != "" {
				file, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("failed to open input file: %w", err)
				}
				defer file.Close()

				in = file
			}

			export, err := slack.ReadExport(in)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			return slack.RenderMarkdown(out, export)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON export file (default: stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func readQueries(cmd *cobra.Command) ([]string, error) {
	fmt.Fprintln(cmd.ErrOrStderr(), "Enter search queries (one per line, Ctrl+D to finish):")

	queries := []string{}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query != "" {
			queries = append(queries, query)
		}
	}

	return queries, scanner.Err()
}
