package gateway

import (
	"net/http"

	"golang.org/x/time/rate"
)

// throttledTransport spaces out requests client-side.
type throttledTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// newThrottledTransport returns base unchanged when rps is not positive.
func newThrottledTransport(base http.RoundTripper, rps float64) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if rps <= 0 {
		return base
	}
	return &throttledTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
