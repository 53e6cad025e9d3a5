package browser

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcaption/pkg/auth"
	errs "igcaption/pkg/errors"
	"igcaption/pkg/logger"
)

// fakeLoginPage scripts the pages the login flow goes through
type fakeLoginPage struct {
	homeAfterPolls int  // home marker appears on this poll (1-based); 0 = never
	codeRequired   bool // verification form shows until a code is submitted
	onetapFirst    bool // first location after submit is the save-login prompt

	navigateErr error
	countErr    error

	polls      int
	navigated  []string
	values     map[string]string
	submitted  []string
	codeSubmit bool
	onetapSeen bool
}

func newFakeLoginPage() *fakeLoginPage {
	return &fakeLoginPage{values: map[string]string{}}
}

func (f *fakeLoginPage) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakeLoginPage) SetValue(_ context.Context, selector, value string) error {
	f.values[selector] = value
	return nil
}

func (f *fakeLoginPage) Submit(_ context.Context, selector string) error {
	f.submitted = append(f.submitted, selector)
	if selector == codeInput {
		f.codeSubmit = true
	}
	return nil
}

func (f *fakeLoginPage) Count(_ context.Context, selector string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	switch selector {
	case homeMarker:
		f.polls++
		if f.codeRequired && !f.codeSubmit {
			return 0, nil
		}
		if f.homeAfterPolls > 0 && f.polls >= f.homeAfterPolls {
			return 1, nil
		}
	case codeInput:
		if f.codeRequired && !f.codeSubmit {
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeLoginPage) Location(context.Context) (string, error) {
	if f.onetapFirst && !f.onetapSeen {
		f.onetapSeen = true
		return "https://www.instagram.com/accounts/onetap/?next=%2F", nil
	}
	return "https://www.instagram.com/", nil
}

type countingCodes struct {
	code  string
	calls atomic.Int32
}

func (c *countingCodes) Code(context.Context, string) (string, error) {
	c.calls.Add(1)
	return c.code, nil
}

var creds = Credentials{Username: "someone", Password: "secret"}

func fastLogin(codes auth.SecondFactorProvider) LoginOptions {
	return LoginOptions{
		Timeout:      time.Second,
		PollInterval: time.Millisecond,
		Codes:        codes,
	}
}

func TestLoginWithoutSecondFactor(t *testing.T) {
	page := newFakeLoginPage()
	page.homeAfterPolls = 3
	log := logger.NewTestLogger()

	require.NoError(t, login(context.Background(), page, creds, fastLogin(nil), log))

	assert.Equal(t, []string{"https://www.instagram.com/accounts/login/"}, page.navigated)
	assert.Equal(t, "someone", page.values[usernameInput])
	assert.Equal(t, "secret", page.values[passwordInput])
	assert.Equal(t, []string{passwordInput}, page.submitted)
	assert.True(t, log.HasMessage("Login successful"))
}

func TestLoginAsksForCodeOnce(t *testing.T) {
	page := newFakeLoginPage()
	page.codeRequired = true
	page.homeAfterPolls = 1
	codes := &countingCodes{code: "123456"}

	require.NoError(t, login(context.Background(), page, creds, fastLogin(codes), nil))

	assert.Equal(t, int32(1), codes.calls.Load())
	assert.Equal(t, "123456", page.values[codeInput])
	assert.Equal(t, []string{passwordInput, codeInput}, page.submitted)
}

func TestLoginCodeRequiredWithoutProvider(t *testing.T) {
	page := newFakeLoginPage()
	page.codeRequired = true

	err := login(context.Background(), page, creds, fastLogin(nil), nil)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeAuth))
}

func TestLoginCodeProviderFails(t *testing.T) {
	page := newFakeLoginPage()
	page.codeRequired = true

	err := login(context.Background(), page, creds, fastLogin(auth.StaticCode("")), nil)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeAuth))
	assert.ErrorIs(t, err, auth.ErrNoCode)
}

func TestLoginSkipsSaveLoginPrompt(t *testing.T) {
	page := newFakeLoginPage()
	page.onetapFirst = true
	page.homeAfterPolls = 2

	opts := fastLogin(nil)
	opts.BaseURL = "https://www.instagram.com"
	require.NoError(t, login(context.Background(), page, creds, opts, nil))

	assert.Equal(t, []string{
		"https://www.instagram.com/accounts/login/",
		"https://www.instagram.com/",
	}, page.navigated)
}

func TestLoginTimesOut(t *testing.T) {
	page := newFakeLoginPage()

	opts := fastLogin(nil)
	opts.Timeout = 20 * time.Millisecond
	err := login(context.Background(), page, creds, opts, nil)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeAuth))
	assert.Contains(t, err.Error(), "did not complete within 20ms")
}

func TestLoginMissingCredentials(t *testing.T) {
	page := newFakeLoginPage()

	err := login(context.Background(), page, Credentials{Username: "someone"}, fastLogin(nil), nil)
	assert.True(t, errs.IsType(err, errs.ErrorTypeAuth))
	assert.Empty(t, page.navigated)
}

func TestLoginNavigationFailure(t *testing.T) {
	page := newFakeLoginPage()
	page.navigateErr = errs.Wrap(errs.ErrorTypeNavigation, errors.New("net::ERR_CONNECTION_REFUSED"), "navigate")

	err := login(context.Background(), page, creds, fastLogin(nil), nil)
	assert.True(t, errs.IsType(err, errs.ErrorTypeAuth))
}

func TestLoginKeepsFatalErrors(t *testing.T) {
	page := newFakeLoginPage()
	page.countErr = errs.Wrap(errs.ErrorTypeSessionFatal, errors.New("target closed"), "count")

	err := login(context.Background(), page, creds, fastLogin(nil), nil)
	assert.True(t, errs.IsFatal(err))
	assert.Equal(t, errs.ErrorTypeSessionFatal, errs.TypeOf(err))
}

func TestLoginCancelled(t *testing.T) {
	page := newFakeLoginPage()
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	err := login(ctx, page, creds, fastLogin(nil), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoll(t *testing.T) {
	calls := 0
	err := poll(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPollStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	err := poll(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPollTimeout(t *testing.T) {
	err := poll(context.Background(), 10*time.Millisecond, time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
