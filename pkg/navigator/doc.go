// Package navigator wraps the browser session used by the crawler.
//
// A Navigator owns exactly one Session between Open and the return of the
// callback passed to it. Outside that window every operation fails with a
// not_initialized error:
//
//	nav := navigator.New(navigator.NewFactory(cfg.Browser, cfg.Download.Timeout), limiter, log)
//	err := nav.Open(ctx, func(nav *navigator.Navigator) error {
//	    _ = nav.Visit(ctx, "https://pastvu.com/ps/1")
//	    boxes, err := nav.FindAll(ctx, navigator.ByClass("photoBox"))
//	    ...
//	})
//
// Two Session backends exist. RodSession drives Chromium through go-rod and
// renders JavaScript. StaticSession fetches pages over HTTP and queries them
// with goquery, which is enough for server-rendered pages and keeps tests
// free of a browser dependency.
//
// Selectors are either a single class (".photoBox") or a tag whose class
// attribute matches exactly (div[class="info title"]).
package navigator
