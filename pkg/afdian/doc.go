// Package afdian is a client for the afdian creator platform's web API.
//
// A Client holds the session for one account: Login stores the auth token in
// the client's cookie jar, VerifyAccount confirms it and picks up the extra
// session cookies the server hands out, and later calls send the jar on
// every request. Requests are sequential and honour the caller's context.
//
// Example usage:
//
//	client, err := afdian.NewClient(cfg.Afdian.BaseURL, cfg.HTTP.Timeout, log)
//	if err != nil {
//	    return err
//	}
//	client.SetLimiter(ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute))
//
//	if err := client.Login(ctx, account, password); err != nil {
//	    return err
//	}
//	if err := client.VerifyAccount(ctx); err != nil {
//	    return err
//	}
//	catalog, err := client.ListCatalog(ctx, albumID)
//
// Failures are reported as *errors.Error values from pkg/errors. A non-2xx
// status or an application failure code is a request error whose message
// carries the raw response body; a successful catalog response without data
// is a not-value error.
package afdian
