// Package downloader fetches archived assets over HTTP and streams them into
// the storage folder. Each asset gets exactly one attempt.
package downloader
