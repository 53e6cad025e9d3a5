package scraper

import (
	errs "igcaption/pkg/errors"
	"igcaption/pkg/models"
)

// CSS selectors for Instagram's rendered DOM. The class chains are generated
// by Instagram's build and change without notice; keep them in one place.
const (
	// PostLinkSelector matches permalinks to posts and reels on a profile grid
	PostLinkSelector = `a[href*='/p/'], a[href*='/reel/']`

	// CaptionSelector matches the caption text nodes on a post page
	CaptionSelector = `._ap3a._aaco._aacu._aacx._aad7._aade`

	// NotNowSelector matches the "Not now" button of the login/notification overlay
	NotNowSelector = `button._a9--._a9_1`
)

// NoCaptionFound is the failure reason recorded when a post renders no caption text
const NoCaptionFound = "no caption found"

// ErrNoCaption is the fault behind a post that rendered without caption text.
// Results record its message only.
var ErrNoCaption = errs.New(errs.ErrorTypeExtractionEmpty, NoCaptionFound)

// IsNoCaption reports whether result failed only because the post had no caption
func IsNoCaption(result models.ScrapeResult) bool {
	return !result.Success && result.ErrorOrEmpty() == ErrNoCaption.Message
}
