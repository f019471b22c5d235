package gateway

import (
	"context"
	"fmt"
	"iter"

	"github.com/shurcooL/githubv4"

	"github.com/naka-gawa/github-review-stats/internal/domain"
)

type reviewConnection struct {
	PageInfo struct {
		HasNextPage bool
		EndCursor   githubv4.String
	}
	Nodes []struct {
		Author *struct {
			Login string
		}
		State       githubv4.PullRequestReviewState
		SubmittedAt *githubv4.DateTime
	}
}

// pullRequestsQuery fetches a page of pull requests with their diff stat and
// first page of reviews inline.
type pullRequestsQuery struct {
	Repository struct {
		PullRequests struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Number    int
				Merged    bool
				MergedAt  *githubv4.DateTime
				Additions int
				Deletions int
				Reviews   reviewConnection `graphql:"reviews(first: $pageSize)"`
			}
		} `graphql:"pullRequests(first: $pageSize, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// reviewsQuery continues a pull request's reviews past the inline page.
type reviewsQuery struct {
	Repository struct {
		PullRequest struct {
			Reviews reviewConnection `graphql:"reviews(first: $pageSize, after: $cursor)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type reviewPage struct {
	reviews     []*domain.Review
	hasNextPage bool
	endCursor   githubv4.String
}

// graphqlRepository avoids the per-PR review and detail requests of the REST
// backend by carrying reviews alongside each pull request page.
type graphqlRepository struct {
	session *session
	owner   string
	name    string
	// inline holds the reviews delivered with the pull request page, keyed by
	// PR number, until Reviews consumes them.
	inline map[int]reviewPage
}

func newGraphQLRepository(s *session, owner, name string) *graphqlRepository {
	return &graphqlRepository{
		session: s,
		owner:   owner,
		name:    name,
		inline:  make(map[int]reviewPage),
	}
}

func (r *graphqlRepository) FullName() string {
	return r.owner + "/" + r.name
}

func (r *graphqlRepository) PullRequests(ctx context.Context) iter.Seq2[*domain.PullRequest, error] {
	return func(yield func(*domain.PullRequest, error) bool) {
		s := r.session
		variables := map[string]interface{}{
			"owner":    githubv4.String(r.owner),
			"name":     githubv4.String(r.name),
			"pageSize": githubv4.Int(s.opts.PageSize),
			"cursor":   (*githubv4.String)(nil),
		}
		for {
			var q pullRequestsQuery
			err := s.retry(ctx, "query pull requests", func() error {
				return s.graphqlClient.Query(ctx, &q, variables)
			})
			if err != nil {
				yield(nil, fmt.Errorf("failed to execute GraphQL query for pull requests: %w", classify(err, "")))
				return
			}

			for _, node := range q.Repository.PullRequests.Nodes {
				pr := &domain.PullRequest{
					Number:         node.Number,
					Merged:         node.Merged,
					Additions:      node.Additions,
					Deletions:      node.Deletions,
					DiffStatLoaded: true,
				}
				if node.MergedAt != nil {
					pr.MergedAt = node.MergedAt.Time
				}
				r.inline[pr.Number] = toReviewPage(node.Reviews)
				if !yield(pr, nil) {
					return
				}
				delete(r.inline, pr.Number)
			}

			if !q.Repository.PullRequests.PageInfo.HasNextPage {
				return
			}
			variables["cursor"] = githubv4.NewString(q.Repository.PullRequests.PageInfo.EndCursor)
			s.logger.Debug("  Fetching next page of pull requests...")
		}
	}
}

func (r *graphqlRepository) Reviews(ctx context.Context, pr *domain.PullRequest) iter.Seq2[*domain.Review, error] {
	return func(yield func(*domain.Review, error) bool) {
		page, ok := r.inline[pr.Number]
		if !ok {
			var err error
			if page, err = r.fetchReviews(ctx, pr.Number, nil); err != nil {
				yield(nil, err)
				return
			}
		}
		for {
			for _, review := range page.reviews {
				if !yield(review, nil) {
					return
				}
			}
			if !page.hasNextPage {
				return
			}
			var err error
			if page, err = r.fetchReviews(ctx, pr.Number, githubv4.NewString(page.endCursor)); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

func (r *graphqlRepository) fetchReviews(ctx context.Context, number int, cursor *githubv4.String) (reviewPage, error) {
	s := r.session
	variables := map[string]interface{}{
		"owner":    githubv4.String(r.owner),
		"name":     githubv4.String(r.name),
		"number":   githubv4.Int(number),
		"pageSize": githubv4.Int(s.opts.PageSize),
		"cursor":   cursor,
	}
	var q reviewsQuery
	err := s.retry(ctx, "query reviews", func() error {
		return s.graphqlClient.Query(ctx, &q, variables)
	})
	if err != nil {
		return reviewPage{}, fmt.Errorf("failed to execute GraphQL query for reviews of PR #%d: %w", number, classify(err, ""))
	}
	return toReviewPage(q.Repository.PullRequest.Reviews), nil
}

// LoadDiffStat is a no-op: pull requests arrive with their diff stat.
func (r *graphqlRepository) LoadDiffStat(context.Context, *domain.PullRequest) error {
	return nil
}

func toReviewPage(conn reviewConnection) reviewPage {
	page := reviewPage{
		reviews:     make([]*domain.Review, 0, len(conn.Nodes)),
		hasNextPage: conn.PageInfo.HasNextPage,
		endCursor:   conn.PageInfo.EndCursor,
	}
	for _, node := range conn.Nodes {
		review := &domain.Review{State: domain.ReviewState(node.State)}
		if node.Author != nil {
			review.ReviewerLogin = node.Author.Login
		}
		if node.SubmittedAt != nil {
			review.SubmittedAt = node.SubmittedAt.Time
		}
		page.reviews = append(page.reviews, review)
	}
	return page
}
