// Package extractor reads links, asset URLs and text from elements located by
// the navigator and turns site-relative links into absolute URLs.
//
// ResolveAbsolute is pure: root-relative paths are joined to the host with a
// single slash, every other input passes through unchanged.
package extractor
