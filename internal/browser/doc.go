// Package browser drives a real Chrome through chromedp.
//
// Session implements session.Session on a single tab. Every operation takes a
// context and returns typed errors from pkg/errors: navigation and timeout
// faults concern the current page only, while ErrorTypeSessionFatal means the
// browser went away and the session must be discarded.
//
// DOM queries snapshot the rendered document and select nodes with goquery, so
// callers see the page exactly as the platform rendered it.
//
// Login signs in through the web login form and hands the verification code
// step to an auth.SecondFactorProvider.
package browser
