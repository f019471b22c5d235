package gateway

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-review-stats/internal/config"
	"github.com/naka-gawa/github-review-stats/internal/domain"
)

type session struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	opts          Options
	logger        logrus.FieldLogger
	login         string
}

func newSession(restClient *github.Client, graphqlClient *githubv4.Client, opts Options, logger logrus.FieldLogger) *session {
	return &session{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		opts:          opts,
		logger:        logger,
	}
}

func (s *session) authenticate(ctx context.Context) error {
	var user *github.User
	err := s.retry(ctx, "fetch authenticated user", func() error {
		var err error
		user, _, err = s.restClient.Users.Get(ctx, "")
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", classify(err, ""))
	}
	s.login = user.GetLogin()
	s.logger.Debugf("Authenticated as %s", s.login)
	return nil
}

func (s *session) CurrentUserLogin() string {
	return s.login
}

func (s *session) Organization(ctx context.Context, name string) (Organization, error) {
	var org *github.Organization
	err := s.retry(ctx, "fetch organization", func() error {
		var err error
		org, _, err = s.restClient.Organizations.Get(ctx, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", classify(err, "organization "+name))
	}
	return &organization{session: s, login: org.GetLogin()}, nil
}

type organization struct {
	session *session
	login   string
}

func (o *organization) Login() string {
	return o.login
}

func (o *organization) Repository(ctx context.Context, name string) (Repository, error) {
	s := o.session
	var repo *github.Repository
	err := s.retry(ctx, "fetch repository", func() error {
		var err error
		repo, _, err = s.restClient.Repositories.Get(ctx, o.login, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", classify(err, fmt.Sprintf("repository %s/%s", o.login, name)))
	}

	owner, repoName := repo.GetOwner().GetLogin(), repo.GetName()
	if owner == "" {
		owner = o.login
	}
	if repoName == "" {
		repoName = name
	}
	if s.opts.API == config.APIGraphQL {
		return newGraphQLRepository(s, owner, repoName), nil
	}
	return &restRepository{session: s, owner: owner, name: repoName}, nil
}

// restRepository issues one review listing per pull request and one detail
// request per pull request whose diff stat is needed.
type restRepository struct {
	session *session
	owner   string
	name    string
}

func (r *restRepository) FullName() string {
	return r.owner + "/" + r.name
}

func (r *restRepository) PullRequests(ctx context.Context) iter.Seq2[*domain.PullRequest, error] {
	return func(yield func(*domain.PullRequest, error) bool) {
		s := r.session
		opts := &github.PullRequestListOptions{
			State:       "all",
			Sort:        "created",
			Direction:   "desc",
			ListOptions: github.ListOptions{PerPage: s.opts.PageSize},
		}
		for {
			var prs []*github.PullRequest
			var resp *github.Response
			err := s.retry(ctx, "list pull requests", func() error {
				var err error
				prs, resp, err = s.restClient.PullRequests.List(ctx, r.owner, r.name, opts)
				return err
			})
			if err != nil {
				yield(nil, fmt.Errorf("failed to list pull requests with REST API: %w", classify(err, "")))
				return
			}
			for _, pr := range prs {
				if !yield(pullRequestFromREST(pr), nil) {
					return
				}
			}
			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
			s.logger.Debug("  Fetching next page of pull requests...")
		}
	}
}

func (r *restRepository) Reviews(ctx context.Context, pr *domain.PullRequest) iter.Seq2[*domain.Review, error] {
	return func(yield func(*domain.Review, error) bool) {
		s := r.session
		opts := &github.ListOptions{PerPage: s.opts.PageSize}
		for {
			var reviews []*github.PullRequestReview
			var resp *github.Response
			err := s.retry(ctx, "list reviews", func() error {
				var err error
				reviews, resp, err = s.restClient.PullRequests.ListReviews(ctx, r.owner, r.name, pr.Number, opts)
				return err
			})
			if err != nil {
				yield(nil, fmt.Errorf("failed to list reviews for PR #%d: %w", pr.Number, classify(err, "")))
				return
			}
			for _, review := range reviews {
				if !yield(reviewFromREST(review), nil) {
					return
				}
			}
			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

// LoadDiffStat fetches the single pull request, since list responses do not
// carry additions and deletions.
func (r *restRepository) LoadDiffStat(ctx context.Context, pr *domain.PullRequest) error {
	if pr.DiffStatLoaded {
		return nil
	}
	s := r.session
	var full *github.PullRequest
	err := s.retry(ctx, "get pull request", func() error {
		var err error
		full, _, err = s.restClient.PullRequests.Get(ctx, r.owner, r.name, pr.Number)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get PR #%d: %w", pr.Number, classify(err, ""))
	}
	pr.Additions = full.GetAdditions()
	pr.Deletions = full.GetDeletions()
	pr.DiffStatLoaded = true
	return nil
}

func pullRequestFromREST(pr *github.PullRequest) *domain.PullRequest {
	out := &domain.PullRequest{
		Number: pr.GetNumber(),
		Merged: pr.GetMerged() || pr.MergedAt != nil,
	}
	if pr.MergedAt != nil {
		out.MergedAt = pr.GetMergedAt().Time
	}
	if pr.Additions != nil && pr.Deletions != nil {
		out.Additions = pr.GetAdditions()
		out.Deletions = pr.GetDeletions()
		out.DiffStatLoaded = true
	}
	return out
}

func reviewFromREST(review *github.PullRequestReview) *domain.Review {
	return &domain.Review{
		ReviewerLogin: review.GetUser().GetLogin(),
		State:         domain.ReviewState(review.GetState()),
		SubmittedAt:   review.GetSubmittedAt().Time,
	}
}
