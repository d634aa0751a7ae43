// Package scraper runs an album export from login to the last saved file.
//
// A Scraper moves through a fixed sequence of states:
//
//	Idle → LoggingIn → Authenticating → ListingCatalog → ExportingPosts → PersistingProgress → Done
//
// and enters Failed on the first error. Posts whose identifiers are already
// in the progress file are skipped. Identifiers exported during the run are
// kept in memory and appended to the progress file once, either at the end of
// the run or as soon as a step fails, so a failed run can be resumed without
// exporting the same posts again.
//
// Usage:
//
//	s, err := scraper.NewFromConfig(cfg, auth.StaticProvider{Account: a, Password: p}, log)
//	if err != nil {
//	    return err
//	}
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//	fmt.Println(s.Summary().Exported)
//
// Requests are made one at a time, paced by the configured rate limit.
package scraper
