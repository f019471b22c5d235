// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// ReviewState is the verdict a reviewer submitted, as reported by GitHub.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// PullRequest is the read-only view of a pull request the collector works on.
// Additions and Deletions are only meaningful once DiffStatLoaded is true.
type PullRequest struct {
	Number         int
	Merged         bool
	MergedAt       time.Time
	Additions      int
	Deletions      int
	DiffStatLoaded bool
}

// Review is a single review submitted on a pull request.
type Review struct {
	ReviewerLogin string
	State         ReviewState
	SubmittedAt   time.Time
}

// IsCommentOnly reports whether the review carries no verdict.
func (r *Review) IsCommentOnly() bool {
	return r.State == ReviewCommented
}
