package browser

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	errs "igcaption/pkg/errors"
	"igcaption/pkg/session"
)

// parseElements selects every element matching selector in an HTML snapshot.
// href and src attributes are resolved against pageURL.
func parseElements(html, pageURL, selector string) ([]session.Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(pageURL)

	var elements []session.Element
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		// line breaks inside captions are rendered as <br>
		sel.Find("br").ReplaceWithHtml("\n")

		el := session.Element{
			Text:  sel.Text(),
			Attrs: make(map[string]string),
		}
		if node := sel.Get(0); node != nil {
			for _, attr := range node.Attr {
				el.Attrs[attr.Key] = attr.Val
			}
		}
		for _, key := range []string{"href", "src"} {
			if v, ok := el.Attrs[key]; ok {
				el.Attrs[key] = resolve(base, v)
			}
		}
		elements = append(elements, el)
	})
	return elements, nil
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// fatalMarkers are substrings of CDP errors raised once the browser is gone
var fatalMarkers = []string{
	"websocket: close",
	"use of closed network connection",
	"target closed",
	"No target with given id",
	"Session with given id not found",
	"broken pipe",
}

// classify types a chromedp error. caller is the context of the operation and
// browser the long-lived browser context.
func classify(caller, browser context.Context, err error, op string) error {
	if err == nil {
		return nil
	}
	if cerr := caller.Err(); cerr != nil {
		return cerr
	}
	if browser.Err() != nil || isFatal(err) {
		return errs.Wrap(errs.ErrorTypeSessionFatal, err, op)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.ErrorTypeTimeout, err, op)
	}
	return errs.Wrap(errs.ErrorTypeNavigation, err, op)
}

func isFatal(err error) bool {
	if errors.Is(err, chromedp.ErrChannelClosed) || errors.Is(err, chromedp.ErrInvalidContext) {
		return true
	}
	msg := err.Error()
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
