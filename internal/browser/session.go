package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"igcaption/pkg/config"
	errs "igcaption/pkg/errors"
	"igcaption/pkg/logger"
	"igcaption/pkg/session"
)

const (
	scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`
	scrollHeightJS   = `document.body.scrollHeight`
	clickTimeout     = 5 * time.Second
)

// Session is a chromedp driven Chrome tab. It implements session.Session.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      logger.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ session.Session = (*Session)(nil)

// New starts Chrome and opens a blank tab. The browser lives until Close is
// called; ctx only bounds startup.
func New(ctx context.Context, cfg config.BrowserConfig, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithField("component", "browser")

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 900),
	)
	if cfg.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.ExecPath))
	}

	// the first Run launches Chrome and ties it to the context it is given,
	// so the browser context must not carry the caller's deadline
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
	)

	s := &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		logger:      log,
	}

	timeout := cfg.StartupTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(tabCtx, chromedp.Navigate("about:blank"))
	}()

	select {
	case err := <-started:
		if err != nil {
			s.Close()
			return nil, errs.Wrap(errs.ErrorTypeSessionFatal, err, "start browser")
		}
	case <-time.After(timeout):
		s.Close()
		return nil, errs.New(errs.ErrorTypeSessionFatal, fmt.Sprintf("browser did not start within %s", timeout))
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}

	log.WithFields(map[string]interface{}{
		"headless": cfg.Headless,
		"exec":     cfg.ExecPath,
	}).Info("Browser started")
	return s, nil
}

// run executes actions on the tab, aborting when ctx is done
func (s *Session) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return classify(ctx, s.ctx, chromedp.Run(runCtx, actions...), op)
}

// Navigate loads url and waits for the load event
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, "navigate "+url, chromedp.Navigate(url))
}

// ScrollToBottom scrolls the window to the end of the document
func (s *Session) ScrollToBottom(ctx context.Context) error {
	var height int64
	return s.run(ctx, "scroll", chromedp.Evaluate(scrollToBottomJS, &height))
}

// ScrollHeight returns document.body.scrollHeight
func (s *Session) ScrollHeight(ctx context.Context) (int64, error) {
	var height int64
	if err := s.run(ctx, "measure scroll height", chromedp.Evaluate(scrollHeightJS, &height)); err != nil {
		return 0, err
	}
	return height, nil
}

// Query snapshots the rendered DOM and selects every match of selector
func (s *Session) Query(ctx context.Context, selector string) ([]session.Element, error) {
	var html, location string
	err := s.run(ctx, "query "+selector,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}

	elements, err := parseElements(html, location, selector)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNavigation, err, "parse DOM snapshot")
	}
	return elements, nil
}

// Count returns how many elements currently match selector
func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	var n int
	js := fmt.Sprintf(`document.querySelectorAll(%q).length`, selector)
	if err := s.run(ctx, "count "+selector, chromedp.Evaluate(js, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

// Click clicks the first visible match of selector
func (s *Session) Click(ctx context.Context, selector string) (bool, error) {
	n, err := s.Count(ctx, selector)
	if err != nil || n == 0 {
		return false, err
	}

	clickCtx, cancel := context.WithTimeout(ctx, clickTimeout)
	defer cancel()
	if err := s.run(clickCtx, "click "+selector, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		if ctx.Err() == nil && clickCtx.Err() != nil {
			// present but never became visible
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// WaitFor blocks until selector is in the DOM or timeout elapses
func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) (session.Element, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.run(waitCtx, "wait for "+selector, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err != nil {
		if ctx.Err() == nil && waitCtx.Err() != nil {
			return session.Element{}, errs.Wrap(errs.ErrorTypeTimeout, err,
				fmt.Sprintf("waiting for %q: timed out after %s", selector, timeout))
		}
		return session.Element{}, err
	}

	elements, err := s.Query(ctx, selector)
	if err != nil {
		return session.Element{}, err
	}
	if len(elements) == 0 {
		return session.Element{}, errs.New(errs.ErrorTypeTimeout, fmt.Sprintf("%q disappeared after render", selector))
	}
	return elements[0], nil
}

// SetValue fills an input
func (s *Session) SetValue(ctx context.Context, selector, value string) error {
	return s.run(ctx, "fill "+selector,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, value, chromedp.ByQuery),
	)
}

// Submit submits the form containing selector
func (s *Session) Submit(ctx context.Context, selector string) error {
	return s.run(ctx, "submit "+selector, chromedp.Submit(selector, chromedp.ByQuery))
}

// Location returns the current page URL
func (s *Session) Location(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, "location", chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// Close shuts the browser down. It is safe to call more than once and after
// the browser crashed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.ctx.Err() == nil {
			if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.closeErr = err
			}
		}
		s.cancelTab()
		s.cancelAlloc()
		s.logger.Debug("Browser closed")
	})
	return s.closeErr
}
