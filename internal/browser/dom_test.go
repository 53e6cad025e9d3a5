package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igcaption/pkg/errors"
)

const profileHTML = `<html><body>
<main>
  <a href="/p/AAA/">one</a>
  <a href="https://www.instagram.com/reel/BBB/">two</a>
  <a href="/explore/">not a post</a>
  <a href="/p/AAA/">one again</a>
</main>
</body></html>`

func TestParseElementsResolvesLinks(t *testing.T) {
	elements, err := parseElements(profileHTML, "https://www.instagram.com/someone/", "a[href*='/p/'], a[href*='/reel/']")
	require.NoError(t, err)
	require.Len(t, elements, 3)

	var hrefs []string
	for _, el := range elements {
		href, ok := el.Attr("href")
		require.True(t, ok)
		hrefs = append(hrefs, href)
	}
	assert.Equal(t, []string{
		"https://www.instagram.com/p/AAA/",
		"https://www.instagram.com/reel/BBB/",
		"https://www.instagram.com/p/AAA/",
	}, hrefs)
}

func TestParseElementsCaptionText(t *testing.T) {
	html := `<html><body>
<h1 class="_ap3a _aaco _aacu _aacx _aad7 _aade">Hello<br>world <a href="/explore/tags/go/">#go</a></h1>
<h1 class="_ap3a _aaco _aacu _aacx _aad7 _aade">  </h1>
</body></html>`

	elements, err := parseElements(html, "https://www.instagram.com/p/AAA/", "._ap3a._aaco._aacu._aacx._aad7._aade")
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, "Hello\nworld #go", elements[0].Text)
	assert.Equal(t, "_ap3a _aaco _aacu _aacx _aad7 _aade", elements[0].Attrs["class"])
	assert.Equal(t, "  ", elements[1].Text)
}

func TestParseElementsNoMatch(t *testing.T) {
	elements, err := parseElements("<html><body></body></html>", "", "h1")
	require.NoError(t, err)
	assert.Empty(t, elements)
}

func TestParseElementsWithoutPageURL(t *testing.T) {
	elements, err := parseElements(profileHTML, "", "a")
	require.NoError(t, err)
	href, _ := elements[0].Attr("href")
	assert.Equal(t, "/p/AAA/", href)
}

func TestClassify(t *testing.T) {
	live := context.Background()
	dead, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		caller  context.Context
		browser context.Context
		err     error
		want    errs.ErrorType
	}{
		{"navigation", live, live, errors.New("net::ERR_NAME_NOT_RESOLVED"), errs.ErrorTypeNavigation},
		{"deadline", live, live, fmt.Errorf("wait: %w", context.DeadlineExceeded), errs.ErrorTypeTimeout},
		{"browser gone", live, dead, errors.New("anything"), errs.ErrorTypeSessionFatal},
		{"channel closed", live, live, chromedp.ErrChannelClosed, errs.ErrorTypeSessionFatal},
		{"websocket closed", live, live, errors.New("websocket: close 1006 (abnormal closure)"), errs.ErrorTypeSessionFatal},
		{"target closed", live, live, errors.New("target closed"), errs.ErrorTypeSessionFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.caller, tt.browser, tt.err, "op")
			require.Error(t, err)
			assert.Equal(t, tt.want, errs.TypeOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, classify(context.Background(), context.Background(), nil, "op"))
}

func TestClassifyCallerCancelled(t *testing.T) {
	caller, cancel := context.WithCancel(context.Background())
	cancel()

	err := classify(caller, context.Background(), errors.New("context canceled"), "op")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errs.IsFatal(err))
}
