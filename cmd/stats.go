package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-review-stats/internal/config"
	"github.com/naka-gawa/github-review-stats/internal/credential"
	"github.com/naka-gawa/github-review-stats/internal/gateway"
	"github.com/naka-gawa/github-review-stats/internal/report"
	"github.com/naka-gawa/github-review-stats/internal/usecase"
)

// newCredentialProvider is swapped out in tests.
var newCredentialProvider = func() credential.Provider {
	return credential.NewPrompt()
}

func newStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Counts a user's pull request reviews since a start month",
		Long: `Scans the pull requests of <organization>/<repository> from newest to oldest and
counts the reviews (other than comment-only ones) the user submitted in or after
the start month. The GitHub token is read from an interactive prompt.`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}
	statsCmd.Flags().StringP("repository", "r", "", "Repository as <organization>/<repository> (required)")
	statsCmd.Flags().StringP("start-date", "s", "", "Start month as YYYYMM (required)")
	statsCmd.Flags().StringP("username", "u", "", "GitHub user to collect stats for (defaults to the logged-in user)")
	statsCmd.Flags().StringP("output", "o", report.FormatText, "Output format: text or json")
	statsCmd.Flags().String("api", "", "GitHub API to scan with: rest or graphql")
	statsCmd.Flags().String("timezone", "", "Reference timezone for month comparisons (default America/Denver)")
	statsCmd.Flags().Bool("strict", false, "Scan every pull request instead of stopping at the first one before the start month")
	statsCmd.Flags().Bool("count-once", false, "Count a pull request once even if the user reviewed it several times")
	statsCmd.Flags().Float64("rps", 0, "Maximum GitHub requests per second (0 for unlimited)")
	_ = statsCmd.MarkFlagRequired("repository")
	_ = statsCmd.MarkFlagRequired("start-date")
	return statsCmd
}

func runStats(cmd *cobra.Command, args []string) error {
	// Flags parsed fine; from here on errors are not usage errors.
	cmd.SilenceUsage = true
	logger := newLogger(cmd)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return err
	}

	githubGateway, err := gateway.NewGitHubGateway(gateway.OptionsFromConfig(cfg), logger)
	if err != nil {
		return err
	}

	var progress io.Writer = cmd.ErrOrStderr()
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		progress = io.Discard
	}
	collector := usecase.NewCollector(collectorOptions(cfg, progress), logger)
	runner := usecase.NewRunner(githubGateway, newCredentialProvider(), collector, logger)

	repository, _ := cmd.Flags().GetString("repository")
	startDate, _ := cmd.Flags().GetString("start-date")
	username, _ := cmd.Flags().GetString("username")
	result, err := runner.Run(cmd.Context(), usecase.Request{
		Repository: repository,
		StartDate:  startDate,
		Reviewer:   username,
	})
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	return report.Write(cmd.OutOrStdout(), output, result)
}

// applyFlagOverrides lets explicitly set flags win over file and environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("api") {
		cfg.API, _ = flags.GetString("api")
	}
	if flags.Changed("timezone") {
		cfg.Timezone, _ = flags.GetString("timezone")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("count-once") {
		cfg.CountOnce, _ = flags.GetBool("count-once")
	}
	if flags.Changed("rps") {
		cfg.RequestsPerSecond, _ = flags.GetFloat64("rps")
	}
	return cfg.Validate()
}

func collectorOptions(cfg *config.Config, progress io.Writer) usecase.Options {
	opts := usecase.Options{
		Location:   cfg.Location(),
		MergeStop:  usecase.StopBeforeCutoff,
		ReviewStop: usecase.StopBeforeCutoff,
		Counting:   usecase.CountPerReview,
		Progress:   progress,
	}
	if cfg.Strict {
		opts.MergeStop = usecase.NeverStop
		opts.ReviewStop = usecase.NeverStop
	}
	if cfg.CountOnce {
		opts.Counting = usecase.CountPerPullRequest
	}
	return opts
}
