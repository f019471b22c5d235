package usecase

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-review-stats/internal/domain"
)

// fakePR is one pull request in a repository snapshot.
type fakePR struct {
	number    int
	mergedAt  time.Time // zero means not merged
	additions int
	deletions int
	reviews   []domain.Review
}

// fakeRepository serves an immutable snapshot the way the REST backend does:
// pull requests arrive without their diff stat.
type fakeRepository struct {
	prs []fakePR

	listErr   error
	reviewErr error

	reviewLists int
	diffLoads   int
}

func (f *fakeRepository) FullName() string { return "org/repo" }

func (f *fakeRepository) PullRequests(ctx context.Context) iter.Seq2[*domain.PullRequest, error] {
	return func(yield func(*domain.PullRequest, error) bool) {
		for _, p := range f.prs {
			pr := &domain.PullRequest{Number: p.number, Merged: !p.mergedAt.IsZero(), MergedAt: p.mergedAt}
			if !yield(pr, nil) {
				return
			}
		}
		if f.listErr != nil {
			yield(nil, f.listErr)
		}
	}
}

func (f *fakeRepository) find(number int) fakePR {
	for _, p := range f.prs {
		if p.number == number {
			return p
		}
	}
	return fakePR{}
}

func (f *fakeRepository) Reviews(ctx context.Context, pr *domain.PullRequest) iter.Seq2[*domain.Review, error] {
	return func(yield func(*domain.Review, error) bool) {
		f.reviewLists++
		if f.reviewErr != nil {
			yield(nil, f.reviewErr)
			return
		}
		for _, r := range f.find(pr.Number).reviews {
			review := r
			if !yield(&review, nil) {
				return
			}
		}
	}
}

func (f *fakeRepository) LoadDiffStat(ctx context.Context, pr *domain.PullRequest) error {
	if pr.DiffStatLoaded {
		return nil
	}
	f.diffLoads++
	p := f.find(pr.Number)
	pr.Additions, pr.Deletions, pr.DiffStatLoaded = p.additions, p.deletions, true
	return nil
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// utc is a shorthand for a UTC instant at noon, well clear of month edges in
// America/Denver.
func utc(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func review(login string, state domain.ReviewState, at time.Time) domain.Review {
	return domain.Review{ReviewerLogin: login, State: state, SubmittedAt: at}
}
