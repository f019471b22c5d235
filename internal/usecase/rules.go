package usecase

import (
	"time"

	"github.com/naka-gawa/github-review-stats/internal/domain"
)

// StopEvent describes something the scan saw that falls before the cutoff.
type StopEvent struct {
	PR *domain.PullRequest
	// Review is nil when the event is the pull request's merge date.
	Review *domain.Review
	// At is the event time in the reference timezone.
	At     time.Time
	Cutoff domain.Cutoff
}

// StopRule decides whether an event before the cutoff ends the whole scan.
//
// Both default rules are approximations. Pull requests are listed by creation
// date, so a merge date before the cutoff does not strictly imply that every
// older pull request was merged earlier too. Likewise a stale review only
// proves nothing newer follows if reviews come newest first and the reviewer
// never came back to the pull request.
type StopRule interface {
	Name() string
	ShouldStop(e StopEvent) bool
}

// StopRuleFunc adapts a function to a StopRule.
type StopRuleFunc func(e StopEvent) bool

func (f StopRuleFunc) Name() string                { return "custom" }
func (f StopRuleFunc) ShouldStop(e StopEvent) bool { return f(e) }

type stopBeforeCutoff struct{}

func (stopBeforeCutoff) Name() string              { return "stop-before-cutoff" }
func (stopBeforeCutoff) ShouldStop(StopEvent) bool { return true }

type neverStop struct{}

func (neverStop) Name() string              { return "never-stop" }
func (neverStop) ShouldStop(StopEvent) bool { return false }

var (
	// StopBeforeCutoff ends the scan at the first event before the cutoff.
	StopBeforeCutoff StopRule = stopBeforeCutoff{}
	// NeverStop skips out-of-window events and keeps scanning.
	NeverStop StopRule = neverStop{}
)

// CountingMode controls how often one pull request can be counted.
type CountingMode int

const (
	// CountPerReview counts every qualifying review, so a pull request the
	// reviewer approved twice adds its diff twice.
	CountPerReview CountingMode = iota
	// CountPerPullRequest counts a pull request at most once.
	CountPerPullRequest
)

func (m CountingMode) String() string {
	if m == CountPerPullRequest {
		return "per-pull-request"
	}
	return "per-review"
}
