package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// RateLimited throttles calls to an underlying Completer. It is shared by all
// goroutines in batch and worker modes.
type RateLimited struct {
	next    Completer
	limiter *rate.Limiter
}

// NewRateLimited allows rps calls per second with a burst of one. rps <= 0
// returns next unchanged.
func NewRateLimited(next Completer, rps float64) Completer {
	if rps <= 0 {
		return next
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (r *RateLimited) Complete(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "llm: rate limit wait")
	}
	return r.next.Complete(ctx, prompt)
}
