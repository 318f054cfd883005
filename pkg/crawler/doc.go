// Package crawler drives the archive run.
//
// For every configured listing page the Crawler visits the page, collects up
// to page-size detail links, then visits each detail page in turn and reads
// its title, date label and asset URL. The asset is saved as
// "{title}-{date}.{ext}" in the storage folder.
//
// Each detail page is its own failure boundary. A missing title, date or
// asset element, a failed navigation or a failed download is logged and
// counted in the Report; the crawl moves on to the next link. Only a browser
// session that cannot be acquired, or a cancelled context, stops the run.
//
// Everything is sequential: one session, one navigation and one download at
// a time, with the pacing delay after every navigation.
package crawler
