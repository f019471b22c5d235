// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"io"
	"time"
	// The reference timezone must resolve even where the host has no zoneinfo.
	_ "time/tzdata"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-review-stats/internal/domain"
	"github.com/naka-gawa/github-review-stats/internal/gateway"
)

// DefaultTimezone is the reference timezone unless configured otherwise.
const DefaultTimezone = "America/Denver"

// Options tunes the scan. The zero value of each field falls back to the
// defaults of DefaultOptions.
type Options struct {
	Location   *time.Location
	MergeStop  StopRule
	ReviewStop StopRule
	Counting   CountingMode
	// Progress receives one line per pull request; nil discards it.
	Progress io.Writer
}

// DefaultOptions reproduces the historical behaviour: both early exits on
// and one count per qualifying review.
func DefaultOptions() Options {
	return Options{
		Location:   defaultLocation,
		MergeStop:  StopBeforeCutoff,
		ReviewStop: StopBeforeCutoff,
		Counting:   CountPerReview,
	}
}

var defaultLocation = mustLoadLocation(DefaultTimezone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load timezone %s: %v", name, err))
	}
	return loc
}

// Result is the outcome of one scan.
type Result struct {
	Repository    string                `json:"repository"`
	Reviewer      string                `json:"reviewer"`
	Cutoff        string                `json:"cutoff"`
	Stats         domain.Accumulator    `json:"stats"`
	Contributions []domain.Contribution `json:"contributions"`
	Scan          domain.ScanStats      `json:"scan"`
}

// Collector is the use case for tallying one reviewer's reviews.
type Collector struct {
	opts   Options
	logger logrus.FieldLogger
}

// NewCollector creates a new Collector instance.
func NewCollector(opts Options, logger logrus.FieldLogger) *Collector {
	defaults := DefaultOptions()
	if opts.Location == nil {
		opts.Location = defaults.Location
	}
	if opts.MergeStop == nil {
		opts.MergeStop = defaults.MergeStop
	}
	if opts.ReviewStop == nil {
		opts.ReviewStop = defaults.ReviewStop
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	return &Collector{opts: opts, logger: logger}
}

// Collect walks repo's pull requests newest first and counts every review by
// reviewer, other than comment-only ones, submitted in or after the cutoff
// month. An all-zero result is not an error.
func (c *Collector) Collect(ctx context.Context, repo gateway.Repository, reviewer string, cutoff domain.Cutoff) (*Result, error) {
	res := &Result{
		Repository:    repo.FullName(),
		Reviewer:      reviewer,
		Cutoff:        cutoff.String(),
		Contributions: []domain.Contribution{},
		Scan:          domain.ScanStats{StopReason: domain.StopExhausted},
	}
	c.logger.WithFields(logrus.Fields{
		"repository":  res.Repository,
		"reviewer":    reviewer,
		"cutoff":      res.Cutoff,
		"timezone":    c.opts.Location.String(),
		"merge_stop":  c.opts.MergeStop.Name(),
		"review_stop": c.opts.ReviewStop.Name(),
		"counting":    c.opts.Counting.String(),
	}).Debug("Usecase: Starting review scan...")
	fmt.Fprintf(c.opts.Progress, "Looping over PRs for %s...\n", res.Repository)

	for pr, err := range repo.PullRequests(ctx) {
		if err != nil {
			return nil, err
		}

		if pr.Merged && !pr.MergedAt.IsZero() {
			mergedAt := pr.MergedAt.In(c.opts.Location)
			event := StopEvent{PR: pr, At: mergedAt, Cutoff: cutoff}
			if !cutoff.Includes(mergedAt) && c.opts.MergeStop.ShouldStop(event) {
				res.Scan.StopReason = domain.StopMergedBeforeCutoff
				res.Scan.StoppedAtPR = pr.Number
				c.logger.Debugf("PR #%d merged %s, before cutoff; stopping", pr.Number, mergedAt.Format(time.DateOnly))
				break
			}
		}

		res.Scan.PullRequestsScanned++
		fmt.Fprintf(c.opts.Progress, "On PR number %d\n", pr.Number)

		stop, err := c.collectReviews(ctx, repo, pr, reviewer, cutoff, res)
		if err != nil {
			return nil, err
		}
		if stop {
			break
		}
	}

	fmt.Fprintf(c.opts.Progress, "...Finished %s PR loop.\n", res.Repository)
	c.logger.WithFields(logrus.Fields{
		"reviewed_prs": res.Stats.ReviewedPRs,
		"scanned":      res.Scan.PullRequestsScanned,
		"reviews":      res.Scan.ReviewsInspected,
		"stop_reason":  res.Scan.StopReason,
	}).Debug("Usecase: Scan complete.")
	return res, nil
}

// collectReviews counts pr's qualifying reviews and reports whether the
// review stop rule ended the scan.
func (c *Collector) collectReviews(ctx context.Context, repo gateway.Repository, pr *domain.PullRequest, reviewer string, cutoff domain.Cutoff, res *Result) (bool, error) {
	counted := false
	for review, err := range repo.Reviews(ctx, pr) {
		if err != nil {
			return false, err
		}
		res.Scan.ReviewsInspected++

		// Pending reviews have no submission time yet.
		if review.ReviewerLogin != reviewer || review.IsCommentOnly() || review.SubmittedAt.IsZero() {
			continue
		}

		submittedAt := review.SubmittedAt.In(c.opts.Location)
		if !cutoff.Includes(submittedAt) {
			event := StopEvent{PR: pr, Review: review, At: submittedAt, Cutoff: cutoff}
			if c.opts.ReviewStop.ShouldStop(event) {
				res.Scan.StopReason = domain.StopStaleReview
				res.Scan.StoppedAtPR = pr.Number
				c.logger.Debugf("Review on PR #%d submitted %s, before cutoff; stopping", pr.Number, submittedAt.Format(time.DateOnly))
				return true, nil
			}
			continue
		}

		if counted && c.opts.Counting == CountPerPullRequest {
			continue
		}
		if err := repo.LoadDiffStat(ctx, pr); err != nil {
			return false, err
		}
		res.Stats.Add(pr)
		res.Contributions = append(res.Contributions, domain.Contribution{
			PRNumber:    pr.Number,
			Additions:   pr.Additions,
			Deletions:   pr.Deletions,
			State:       review.State,
			SubmittedAt: review.SubmittedAt,
		})
		counted = true
		c.logger.Debugf("Counted %s review on PR #%d (+%d/-%d)", review.State, pr.Number, pr.Additions, pr.Deletions)
	}
	return false, nil
}
