package extractor

import (
	"net/url"
	"strings"

	"photoarchiver/pkg/errors"
	"photoarchiver/pkg/logger"
	"photoarchiver/pkg/navigator"
)

// DefaultPageSize is the number of listing items taken when no limit is given
const DefaultPageSize = 15

// DefaultScheme is used for root-relative links
const DefaultScheme = "https"

// LinkRecord is an absolute detail page URL found on a listing page
type LinkRecord struct {
	Href string
}

// Extractor turns located elements into URLs and text
type Extractor struct {
	logger   logger.Logger
	pageSize int
	scheme   string
}

// New creates an Extractor. A non-positive pageSize or empty scheme falls
// back to the defaults.
func New(pageSize int, scheme string, log logger.Logger) *Extractor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if scheme == "" {
		scheme = DefaultScheme
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{
		logger:   log.WithField("component", "extractor"),
		pageSize: pageSize,
		scheme:   scheme,
	}
}

// ExtractLink reads the href of el and resolves it against the host of
// baseURL. An element without href yields ("", false).
func (e *Extractor) ExtractLink(el navigator.Element, baseURL string) (string, bool) {
	return e.extractAttribute(el, "href", baseURL)
}

// ExtractAssetURL reads the src of el and resolves it against the host of
// baseURL. A missing src is logged and yields ("", false).
func (e *Extractor) ExtractAssetURL(el navigator.Element, baseURL string) (string, bool) {
	src, ok := e.extractAttribute(el, "src", baseURL)
	if !ok {
		e.logger.
			WithError(errors.New(errors.ErrorTypeExtraction, "asset element has no src")).
			WithField("page", baseURL).
			Warn("No asset URL on page")
	}
	return src, ok
}

// ExtractText returns the rendered text of el
func (e *Extractor) ExtractText(el navigator.Element) (string, error) {
	text, err := el.Text()
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeExtraction, "failed to read element text", err)
	}
	return text, nil
}

// ExtractLinks applies ExtractLink to the first limit elements, keeping their
// order and dropping those without href. A non-positive limit means the
// configured page size.
func (e *Extractor) ExtractLinks(elements []navigator.Element, limit int, baseURL string) []LinkRecord {
	if limit <= 0 {
		limit = e.pageSize
	}
	if len(elements) > limit {
		elements = elements[:limit]
	}

	links := make([]LinkRecord, 0, len(elements))
	for _, el := range elements {
		if href, ok := e.ExtractLink(el, baseURL); ok {
			links = append(links, LinkRecord{Href: href})
		}
	}

	e.logger.DebugWithFields("Extracted links", map[string]interface{}{
		"page":     baseURL,
		"elements": len(elements),
		"links":    len(links),
	})
	return links
}

func (e *Extractor) extractAttribute(el navigator.Element, name, baseURL string) (string, bool) {
	value, ok, err := el.Attribute(name)
	if err != nil {
		e.logger.WithError(err).WithField("attribute", name).Debug("Failed to read attribute")
		return "", false
	}
	if !ok {
		return "", false
	}
	if baseURL == "" {
		return value, true
	}
	return ResolveAbsolute(HostOf(baseURL), value, e.scheme), true
}

// HostOf returns the host (with port) of rawURL, or "" if it cannot be parsed
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// ResolveAbsolute prefixes a root-relative path with scheme://host, even when
// host is empty. A protocol-relative path only gets the scheme. Anything
// else, including absolute URLs, relative paths and "", is returned unchanged.
func ResolveAbsolute(host, path, scheme string) string {
	if scheme == "" {
		scheme = DefaultScheme
	}

	switch {
	case strings.HasPrefix(path, "//"):
		return scheme + ":" + path
	case strings.HasPrefix(path, "/"):
		return scheme + "://" + host + "/" + strings.TrimPrefix(path, "/")
	default:
		return path
	}
}
