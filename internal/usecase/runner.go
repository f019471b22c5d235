package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-review-stats/internal/credential"
	"github.com/naka-gawa/github-review-stats/internal/domain"
	"github.com/naka-gawa/github-review-stats/internal/gateway"
)

// Request is the caller's input for one run.
type Request struct {
	Repository string
	StartDate  string
	// Reviewer defaults to the authenticated user when empty.
	Reviewer string
}

// Runner performs a complete run: validate, authenticate, resolve, collect.
type Runner struct {
	auth        gateway.Authenticator
	credentials credential.Provider
	collector   *Collector
	logger      logrus.FieldLogger
}

// NewRunner creates a new Runner instance.
func NewRunner(auth gateway.Authenticator, credentials credential.Provider, collector *Collector, logger logrus.FieldLogger) *Runner {
	return &Runner{
		auth:        auth,
		credentials: credentials,
		collector:   collector,
		logger:      logger,
	}
}

// Run validates req before touching the network or prompting for a token.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	id, err := domain.ParseRepositoryID(req.Repository)
	if err != nil {
		return nil, err
	}
	cutoff, err := domain.ParseCutoff(req.StartDate)
	if err != nil {
		return nil, err
	}

	token, err := r.credentials.Token(ctx)
	if err != nil {
		return nil, err
	}
	session, err := r.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	reviewer := req.Reviewer
	if reviewer == "" {
		reviewer = session.CurrentUserLogin()
	}
	r.logger.Debugf("Collecting reviews by %s", reviewer)

	org, err := session.Organization(ctx, id.Owner)
	if err != nil {
		return nil, err
	}
	repo, err := org.Repository(ctx, id.Name)
	if err != nil {
		return nil, err
	}
	return r.collector.Collect(ctx, repo, reviewer, cutoff)
}
