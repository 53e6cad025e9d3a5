package session

import (
	"context"
	"time"
)

// Element is a snapshot of one DOM element matched by a selector
type Element struct {
	Text  string
	Attrs map[string]string
}

// Attr returns the named attribute. For anchors, "href" is already absolute.
func (e Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Session is a live browser session exclusively owned by one pipeline run.
// Implementations are not safe for concurrent use.
type Session interface {
	// Navigate loads url in the current tab
	Navigate(ctx context.Context, url string) error
	// ScrollToBottom scrolls to the end of the rendered content
	ScrollToBottom(ctx context.Context) error
	// ScrollHeight returns the current scrollable content height
	ScrollHeight(ctx context.Context) (int64, error)
	// Query returns every element currently matching selector, in document order
	Query(ctx context.Context, selector string) ([]Element, error)
	// Click clicks the first element matching selector and reports whether
	// anything matched
	Click(ctx context.Context, selector string) (bool, error)
	// WaitFor blocks until selector matches or timeout elapses. A timeout is
	// reported as an ErrorTypeTimeout error.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, error)
	// Close releases the browser. It is idempotent and safe after faults.
	Close() error
}
