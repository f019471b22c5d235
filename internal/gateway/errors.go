package gateway

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/github-review-stats/internal/domain"
)

// classify maps HTTP status failures to domain errors. resource names what
// was being looked up and is only used for 404s; pass "" to leave 404s as is.
func classify(err error, resource string) error {
	if err == nil {
		return nil
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusUnauthorized:
			return domain.NewAuthenticationError(err)
		case http.StatusNotFound:
			if resource != "" {
				return domain.NewNotFoundError(resource, err)
			}
		}
		return err
	}
	// githubv4 only reports the status line in the message.
	if strings.Contains(err.Error(), "non-200 OK status code: 401") {
		return domain.NewAuthenticationError(err)
	}
	return err
}

// isTransient reports whether err is worth another attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return false
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Response != nil && errResp.Response.StatusCode >= http.StatusInternalServerError
	}
	// Only timeouts and dropped connections; TLS and URL errors are permanent.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return strings.Contains(err.Error(), "non-200 OK status code: 5")
}

// retry runs op until it succeeds, fails permanently, or maxRetries
// additional attempts have been spent.
func (s *session) retry(ctx context.Context, what string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.RetryInterval
	bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.opts.MaxRetries)), ctx)

	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bo, func(err error, wait time.Duration) {
		s.logger.WithError(err).Debugf("Retrying %s in %s", what, wait)
	})
}
