// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "github-review-stats",
		Short: "A CLI tool to report a user's pull request reviews in a repository.",
		Long: `github-review-stats counts the pull requests a GitHub user reviewed in a
single repository since a given month, along with the lines added and removed
by those pull requests and the largest one.`,
	}
	// Add a persistent flag for verbose output, available to all commands.
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress per-PR progress output")
	root.PersistentFlags().String("config", "", "Path to a YAML config file")
	root.AddCommand(newStatsCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newLogger discards everything unless --verbose is set.
func newLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(io.Discard)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
