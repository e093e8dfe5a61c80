package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func main() {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC1123,
	})
	log.SetOutput(os.Stderr)

	// tokens may come from a .env file next to the working directory
	_ = godotenv.Load()

	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "tpmtools",
		Short:         "Program-management tooling for GitHub and Slack",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable more verbose logging")

	rootCmd.AddCommand(
		newMilestonesCommand(),
		newProjectCommand(),
		newSlackCommand(),
		newReportCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// tokenOr returns the flag value when set, otherwise the environment
// variable. Commands resolve their credentials once, here at the edge,
// and pass them down as plain values.
func tokenOr(flagValue string, envVar string) string {
	if flagValue != "" {
		return flagValue
	}

	return os.Getenv(envVar)
}
