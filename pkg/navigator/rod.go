package navigator

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodOptions configures the Chromium instance behind a RodSession
type RodOptions struct {
	Headless  bool
	Stealth   bool
	NoSandbox bool
	Bin       string
	UserAgent string
}

// RodSession drives a single Chromium tab through the DevTools protocol
type RodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// NewRodSession launches Chromium and opens the tab used for the whole run
func NewRodSession(ctx context.Context, opts RodOptions) (*RodSession, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.Stealth {
		l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		l.Delete(flags.Flag("enable-automation"))
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	var page *rod.Page
	if opts.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	return &RodSession{launcher: l, browser: browser, page: page}, nil
}

// Navigate loads url and waits for the load event
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

// FindAll queries the current document without waiting for late elements
func (s *RodSession) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	if _, err := sel.Compile(); err != nil {
		return nil, err
	}

	found, err := s.page.Context(ctx).Elements(sel.CSS())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", sel, err)
	}

	elements := make([]Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, rodElement{el})
	}
	return elements, nil
}

// Close shuts the browser down and waits for the process to exit
func (s *RodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Cleanup()
	return err
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) Attribute(name string) (string, bool, error) {
	value, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (e rodElement) Text() (string, error) {
	return e.el.Text()
}
