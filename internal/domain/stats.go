package domain

import "time"

// Accumulator holds the review totals for one run.
type Accumulator struct {
	ReviewedPRs    int `json:"reviewed_prs"`
	TotalAdditions int `json:"total_additions"`
	TotalDeletions int `json:"total_deletions"`
	MaxAdditions   int `json:"max_additions"`
	MaxAdditionsPR int `json:"max_additions_pr"`
}

// Add counts one qualifying review on pr.
func (a *Accumulator) Add(pr *PullRequest) {
	a.ReviewedPRs++
	a.TotalAdditions += pr.Additions
	a.TotalDeletions += pr.Deletions
	if pr.Additions > a.MaxAdditions {
		a.MaxAdditions = pr.Additions
		a.MaxAdditionsPR = pr.Number
	}
}

// Contribution records one counted review.
type Contribution struct {
	PRNumber    int         `json:"pr_number"`
	Additions   int         `json:"additions"`
	Deletions   int         `json:"deletions"`
	State       ReviewState `json:"state"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// StopReason says why a scan ended.
type StopReason string

const (
	StopExhausted          StopReason = "exhausted"
	StopMergedBeforeCutoff StopReason = "merged-before-cutoff"
	StopStaleReview        StopReason = "stale-review"
)

// ScanStats describes how much of the repository a run looked at.
type ScanStats struct {
	PullRequestsScanned int        `json:"pull_requests_scanned"`
	ReviewsInspected    int        `json:"reviews_inspected"`
	StopReason          StopReason `json:"stop_reason"`
	StoppedAtPR         int        `json:"stopped_at_pr,omitempty"`
}
