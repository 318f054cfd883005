package navigator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StaticSession is a Session without JavaScript: it fetches pages over HTTP
// and queries them with goquery. It suits server-rendered listing pages.
type StaticSession struct {
	client    *http.Client
	userAgent string
	doc       *goquery.Document
}

// NewStaticSession creates a session that uses client for page fetches
func NewStaticSession(client *http.Client, userAgent string) *StaticSession {
	if client == nil {
		client = http.DefaultClient
	}
	return &StaticSession{client: client, userAgent: userAgent}
}

// Navigate loads url. Like a browser, an error status still replaces the
// current document with the error page.
func (s *StaticSession) Navigate(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	s.doc = doc

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return nil
}

// FindAll returns the elements of the current document matching sel. A
// session that has not loaded any page yet behaves like a blank page.
func (s *StaticSession) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	matcher, err := sel.Compile()
	if err != nil {
		return nil, err
	}
	if s.doc == nil {
		return nil, nil
	}

	var elements []Element
	s.doc.FindMatcher(matcher).Each(func(_ int, node *goquery.Selection) {
		elements = append(elements, staticElement{node})
	})
	return elements, nil
}

// Close drops the current document and idle connections
func (s *StaticSession) Close() error {
	s.doc = nil
	s.client.CloseIdleConnections()
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (e staticElement) Attribute(name string) (string, bool, error) {
	value, ok := e.sel.Attr(name)
	return value, ok, nil
}

func (e staticElement) Text() (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}
