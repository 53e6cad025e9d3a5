// Package scraper collects post links from Instagram profiles and extracts
// post captions through a browser session.
//
// There are three pieces:
//
//   - Collector scrolls a profile page and gathers unique post and reel
//     permalinks until a stopping rule fires: a run of scrolls with no new
//     links, an unchanged page height (opt-in), or the max_scrolls bound.
//   - Extractor opens one post, waits for the caption to render and turns it
//     into a models.ScrapeResult. It never returns an error; failures are data.
//   - Pipeline drives the Extractor over a list of URLs sequentially, paces
//     requests and closes the session when it is done.
//
// All three work against the session.Session interface. internal/browser
// provides the chromedp implementation and session.FakeSession backs the
// tests.
//
//	sess, err := browser.New(ctx, cfg.Browser, log)
//	if err != nil {
//	    return err
//	}
//	links := scraper.NewCollector(sess, cfg.Collector, log).Collect(ctx, profileURL)
//	pipeline := scraper.NewPipeline(sess, cfg.Extractor,
//	    ratelimit.NewIntervalPacer(cfg.Pipeline.RequestInterval), nil, log)
//	batch, err := pipeline.Run(ctx, links)
package scraper
