// Package ratelimit paces outgoing requests to the afdian API.
//
// The export run issues one login, one account check, one catalog listing
// and then one detail request per post. Pacer spaces those requests evenly
// using golang.org/x/time/rate so that large albums are fetched at a steady
// rate instead of in a burst.
//
// Usage:
//
//	limiter := ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // context cancelled
//	}
//
// PerMinute(0) returns Unlimited, which never waits.
package ratelimit
