// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/github-review-stats/internal/config"
	"github.com/naka-gawa/github-review-stats/internal/domain"
)

// Authenticator opens a Session for a token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Session, error)
}

// Session is an authenticated connection to GitHub.
type Session interface {
	CurrentUserLogin() string
	Organization(ctx context.Context, name string) (Organization, error)
}

// Organization resolves repositories it owns.
type Organization interface {
	Login() string
	Repository(ctx context.Context, name string) (Repository, error)
}

// Repository yields pull requests and their reviews lazily. Pages are only
// requested while the caller keeps ranging.
type Repository interface {
	FullName() string
	// PullRequests yields every pull request, newest created first.
	PullRequests(ctx context.Context) iter.Seq2[*domain.PullRequest, error]
	// Reviews yields the reviews of pr in the order GitHub returns them.
	Reviews(ctx context.Context, pr *domain.PullRequest) iter.Seq2[*domain.Review, error]
	// LoadDiffStat fills pr.Additions and pr.Deletions if they are not loaded yet.
	LoadDiffStat(ctx context.Context, pr *domain.PullRequest) error
}

// Options configures how the gateway talks to GitHub.
type Options struct {
	API                 string
	RESTBaseURL         string
	GraphQLURL          string
	PageSize            int
	RequestsPerSecond   float64
	MaxRetries          int
	RetryInterval       time.Duration
	RateLimitSleepLimit time.Duration
}

// OptionsFromConfig copies the gateway settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		API:                 cfg.API,
		RESTBaseURL:         cfg.RESTBaseURL,
		GraphQLURL:          cfg.GraphQLURL,
		PageSize:            cfg.PageSize,
		RequestsPerSecond:   cfg.RequestsPerSecond,
		MaxRetries:          cfg.MaxRetries,
		RetryInterval:       cfg.RetryInterval,
		RateLimitSleepLimit: cfg.RateLimitSleepLimit,
	}
}

// GitHubGateway is the concrete implementation of the Authenticator interface.
type GitHubGateway struct {
	opts      Options
	transport http.RoundTripper
	logger    logrus.FieldLogger
}

// NewGitHubGateway builds the shared transport: requests are throttled to
// opts.RequestsPerSecond and wait out secondary rate limits.
func NewGitHubGateway(opts Options, logger logrus.FieldLogger) (*GitHubGateway, error) {
	if opts.PageSize == 0 {
		opts.PageSize = 100
	}
	if opts.RateLimitSleepLimit == 0 {
		opts.RateLimitSleepLimit = time.Hour
	}
	callback := func(cbContext *github_ratelimit.CallbackContext) {
		logger.Warnf("Hit secondary rate limit, sleeping until %s", cbContext.SleepUntil)
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(
		newThrottledTransport(nil, opts.RequestsPerSecond),
		github_ratelimit.WithSingleSleepLimit(opts.RateLimitSleepLimit, nil),
		github_ratelimit.WithLimitDetectedCallback(callback),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	return &GitHubGateway{opts: opts, transport: rateLimitWaiter, logger: logger}, nil
}

// Authenticate fetches the token's own user. A rejected token yields a
// domain.ErrAuthentication error.
func (g *GitHubGateway) Authenticate(ctx context.Context, token string) (Session, error) {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   g.transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}

	restClient := github.NewClient(httpClient)
	if g.opts.RESTBaseURL != "" {
		var err error
		restClient, err = restClient.WithEnterpriseURLs(g.opts.RESTBaseURL, g.opts.RESTBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure REST base URL: %w", err)
		}
	}
	graphqlClient := githubv4.NewClient(httpClient)
	if g.opts.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(g.opts.GraphQLURL, httpClient)
	}

	s := newSession(restClient, graphqlClient, g.opts, g.logger)
	if err := s.authenticate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
