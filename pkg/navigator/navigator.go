package navigator

import (
	"context"
	"fmt"

	"github.com/andybalholm/cascadia"

	"photoarchiver/pkg/errors"
	"photoarchiver/pkg/logger"
	"photoarchiver/pkg/ratelimit"
)

// Selector locates elements either by a single class name or by a tag whose
// class attribute equals Classes exactly.
type Selector struct {
	Class   string
	Tag     string
	Classes string
}

// ByClass selects elements carrying the given class
func ByClass(class string) Selector {
	return Selector{Class: class}
}

// ByClasses selects tag elements whose class attribute is exactly classes,
// e.g. ByClasses("div", "info title").
func ByClasses(tag, classes string) Selector {
	return Selector{Tag: tag, Classes: classes}
}

// CSS renders the selector as a CSS selector understood by both backends
func (s Selector) CSS() string {
	if s.Class != "" {
		return "." + s.Class
	}
	return fmt.Sprintf("%s[class=%q]", s.Tag, s.Classes)
}

// Compile validates the selector and returns its cascadia form
func (s Selector) Compile() (cascadia.Selector, error) {
	if s.Class == "" && (s.Tag == "" || s.Classes == "") {
		return nil, fmt.Errorf("empty selector")
	}
	sel, err := cascadia.Compile(s.CSS())
	if err != nil {
		return nil, fmt.Errorf("invalid selector %s: %w", s.CSS(), err)
	}
	return sel, nil
}

func (s Selector) String() string {
	return s.CSS()
}

// Element is a located DOM node
type Element interface {
	// Attribute returns the attribute value and whether it is present
	Attribute(name string) (string, bool, error)
	// Text returns the rendered text content
	Text() (string, error)
}

// Session is a live browser session. Implementations are not safe for
// concurrent use.
type Session interface {
	Navigate(ctx context.Context, url string) error
	FindAll(ctx context.Context, sel Selector) ([]Element, error)
	Close() error
}

// Factory acquires a new Session
type Factory func(ctx context.Context) (Session, error)

// Navigator owns one Session for the duration of Open and paces every
// navigation with its limiter.
type Navigator struct {
	factory Factory
	limiter ratelimit.Limiter
	logger  logger.Logger
	session Session
}

// New creates a Navigator. The session is not acquired until Open.
func New(factory Factory, limiter ratelimit.Limiter, log logger.Logger) *Navigator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Navigator{
		factory: factory,
		limiter: limiter,
		logger:  log.WithField("component", "navigator"),
	}
}

// Open acquires a session, runs fn and releases the session on every exit
// path, including a panic inside fn.
func (n *Navigator) Open(ctx context.Context, fn func(nav *Navigator) error) (err error) {
	if n.session != nil {
		return errors.New(errors.ErrorTypeNotInitialized, "session already open")
	}

	session, err := n.factory(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNotInitialized, "failed to acquire browser session", err)
	}
	n.session = session
	logger.LogComponentStart(n.logger, "session", nil)

	defer func() {
		n.session = nil
		closeErr := session.Close()
		if closeErr != nil {
			n.logger.WithError(closeErr).Warn("Failed to close browser session")
			if err == nil {
				err = errors.Wrap(errors.ErrorTypeNotInitialized, "failed to release browser session", closeErr)
			}
		}
		logger.LogComponentStop(n.logger, "session", "released")
	}()

	return fn(n)
}

// Session returns the active session or a NotInitialized error outside Open
func (n *Navigator) Session() (Session, error) {
	if n.session == nil {
		return nil, errors.New(errors.ErrorTypeNotInitialized, "browser session was not initialized")
	}
	return n.session, nil
}

// Visit navigates to url. Navigation failures are logged, not returned; the
// caller continues with whatever DOM state resulted. Visit always waits for
// the pacing interval before returning.
func (n *Navigator) Visit(ctx context.Context, url string) error {
	session, err := n.Session()
	if err != nil {
		return err
	}

	navErr := session.Navigate(ctx, url)
	if navErr != nil {
		navErr = errors.Wrap(errors.ErrorTypeNavigation, "failed to get to "+url, navErr)
	}
	logger.LogVisit(n.logger, url, navErr)

	return n.limiter.Wait(ctx)
}

// FindAll returns every element matching sel, in DOM order
func (n *Navigator) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	session, err := n.Session()
	if err != nil {
		return nil, err
	}
	return session.FindAll(ctx, sel)
}

// FindOne returns the first element matching sel or an ElementNotFound error
func (n *Navigator) FindOne(ctx context.Context, sel Selector) (Element, error) {
	elements, err := n.FindAll(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, errors.New(errors.ErrorTypeElementNotFound, "no element matches "+sel.String())
	}
	return elements[0], nil
}
