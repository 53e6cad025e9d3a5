package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	errs "igcaption/pkg/errors"
)

// FakePage scripts what a FakeSession renders for one URL
type FakePage struct {
	// Snapshots maps a selector to what Query returns after n scrolls.
	// The last snapshot repeats once scrolling goes past the end.
	Snapshots map[string][][]Element
	// Heights is the scroll height after n scrolls; the last value repeats
	Heights []int64
	// NavigateErr is returned when navigating to this page
	NavigateErr error
	// QueryErrAt fails Query once the page has been scrolled n times
	QueryErrAt map[int]error
}

// FakeSession is an in-memory Session for tests and dry runs
type FakeSession struct {
	mu sync.Mutex

	Pages map[string]*FakePage
	// DieAfter kills the session on the navigation after this many
	// successful ones (0 disables)
	DieAfter int
	// ScrollErr is returned by every ScrollToBottom call when set
	ScrollErr error

	current     string
	scrolls     int
	dead        bool
	navigations []string
	clicks      []string
	closeCalls  int
}

// NewFakeSession creates a fake session with the given pages
func NewFakeSession(pages map[string]*FakePage) *FakeSession {
	if pages == nil {
		pages = make(map[string]*FakePage)
	}
	return &FakeSession{Pages: pages}
}

// CaptionPage is a shortcut for a post page whose selector matches texts
func CaptionPage(selector string, texts ...string) *FakePage {
	elements := make([]Element, 0, len(texts))
	for _, text := range texts {
		elements = append(elements, Element{Text: text})
	}
	return &FakePage{Snapshots: map[string][][]Element{selector: {elements}}}
}

// Anchors builds anchor elements for the given hrefs
func Anchors(hrefs ...string) []Element {
	elements := make([]Element, 0, len(hrefs))
	for _, href := range hrefs {
		elements = append(elements, Element{Attrs: map[string]string{"href": href}})
	}
	return elements
}

func (f *FakeSession) fatal() error {
	return errs.New(errs.ErrorTypeSessionFatal, "fake session is closed")
}

// Navigate records the navigation and switches the current page
func (f *FakeSession) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f.dead {
		return f.fatal()
	}
	if f.DieAfter > 0 && len(f.navigations) >= f.DieAfter {
		f.dead = true
		return f.fatal()
	}

	f.navigations = append(f.navigations, url)
	f.current = url
	f.scrolls = 0

	page, ok := f.Pages[url]
	if !ok {
		return errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("no page scripted for %s", url))
	}
	if page.NavigateErr != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, page.NavigateErr, "navigate "+url)
	}
	return nil
}

// ScrollToBottom advances the scroll counter of the current page
func (f *FakeSession) ScrollToBottom(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dead {
		return f.fatal()
	}
	if f.ScrollErr != nil {
		return f.ScrollErr
	}
	f.scrolls++
	return nil
}

// ScrollHeight returns the scripted height for the current scroll position
func (f *FakeSession) ScrollHeight(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dead {
		return 0, f.fatal()
	}
	page := f.Pages[f.current]
	if page == nil || len(page.Heights) == 0 {
		return 0, nil
	}
	idx := f.scrolls
	if idx >= len(page.Heights) {
		idx = len(page.Heights) - 1
	}
	return page.Heights[idx], nil
}

// Query returns the scripted snapshot for selector
func (f *FakeSession) Query(ctx context.Context, selector string) ([]Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.query(selector)
}

func (f *FakeSession) query(selector string) ([]Element, error) {
	if f.dead {
		return nil, f.fatal()
	}
	page := f.Pages[f.current]
	if page == nil {
		return nil, nil
	}
	if err, ok := page.QueryErrAt[f.scrolls]; ok {
		return nil, err
	}
	snapshots := page.Snapshots[selector]
	if len(snapshots) == 0 {
		return nil, nil
	}
	idx := f.scrolls
	if idx >= len(snapshots) {
		idx = len(snapshots) - 1
	}
	out := make([]Element, len(snapshots[idx]))
	copy(out, snapshots[idx])
	return out, nil
}

// Click records a click when selector matches on the current page
func (f *FakeSession) Click(ctx context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	elements, err := f.query(selector)
	if err != nil || len(elements) == 0 {
		return false, err
	}
	f.clicks = append(f.clicks, selector)
	return true, nil
}

// WaitFor returns the first match or a timeout error without sleeping
func (f *FakeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	elements, err := f.query(selector)
	if err != nil {
		return Element{}, err
	}
	if len(elements) == 0 {
		return Element{}, errs.New(errs.ErrorTypeTimeout, fmt.Sprintf("waiting for %q: timed out after %s", selector, timeout))
	}
	return elements[0], nil
}

// Close marks the session dead and counts the call
func (f *FakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closeCalls++
	f.dead = true
	return nil
}

// Kill simulates the browser dying out-of-band
func (f *FakeSession) Kill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead = true
}

// CloseCalls returns how many times Close was called
func (f *FakeSession) CloseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

// Navigations returns every URL the session attempted to load
func (f *FakeSession) Navigations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.navigations))
	copy(out, f.navigations)
	return out
}

// Scrolls returns the scroll count on the current page
func (f *FakeSession) Scrolls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrolls
}

// Clicks returns the selectors that were clicked
func (f *FakeSession) Clicks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.clicks))
	copy(out, f.clicks)
	return out
}
