package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"igcaption/pkg/auth"
	errs "igcaption/pkg/errors"
	"igcaption/pkg/logger"
)

const (
	usernameInput = "input[name='username']"
	passwordInput = "input[name='password']"
	codeInput     = "input[name='verificationCode']"
	homeMarker    = "svg[aria-label='Home']"
	onetapPath    = "/accounts/onetap"

	codePrompt = "Enter the code we sent to you"

	defaultLoginTimeout = 5 * time.Minute
	defaultLoginPoll    = 2 * time.Second
)

// Credentials is what Login needs to sign in
type Credentials struct {
	Username string
	Password string
}

// LoginOptions tunes the login flow. Zero values fall back to defaults.
type LoginOptions struct {
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
	Codes        auth.SecondFactorProvider
}

// loginPage is the part of Session the login flow drives
type loginPage interface {
	Navigate(ctx context.Context, url string) error
	SetValue(ctx context.Context, selector, value string) error
	Submit(ctx context.Context, selector string) error
	Count(ctx context.Context, selector string) (int, error)
	Location(ctx context.Context) (string, error)
}

// Login signs into Instagram in the session's tab. It fills the login form,
// then waits for the home feed. When the verification code form shows up the
// code is taken from opts.Codes. All failures are ErrorTypeAuth unless the
// browser died or ctx was cancelled.
func Login(ctx context.Context, s *Session, creds Credentials, opts LoginOptions, log logger.Logger) error {
	return login(ctx, s, creds, opts, log)
}

func login(ctx context.Context, page loginPage, creds Credentials, opts LoginOptions, log logger.Logger) error {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithFields(map[string]interface{}{
		"component": "login",
		"username":  creds.Username,
	})
	if creds.Username == "" || creds.Password == "" {
		return errs.New(errs.ErrorTypeAuth, "username and password are required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultLoginTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultLoginPoll
	}

	base := baseOrDefault(opts.BaseURL)
	if err := page.Navigate(ctx, LoginURL(base)); err != nil {
		return authError(err, "open login page")
	}
	if err := page.SetValue(ctx, usernameInput, creds.Username); err != nil {
		return authError(err, "fill username")
	}
	if err := page.SetValue(ctx, passwordInput, creds.Password); err != nil {
		return authError(err, "fill password")
	}
	if err := page.Submit(ctx, passwordInput); err != nil {
		return authError(err, "submit login form")
	}
	log.Info("Login form submitted")

	codeSent := false
	err := poll(ctx, opts.Timeout, opts.PollInterval, func(ctx context.Context) (bool, error) {
		if n, err := page.Count(ctx, homeMarker); err != nil {
			return false, err
		} else if n > 0 {
			return true, nil
		}

		location, err := page.Location(ctx)
		if err != nil {
			return false, err
		}
		if strings.Contains(location, onetapPath) {
			log.Debug("Skipping save-login prompt")
			return false, page.Navigate(ctx, strings.TrimRight(base, "/")+"/")
		}

		if codeSent {
			return false, nil
		}
		n, err := page.Count(ctx, codeInput)
		if err != nil || n == 0 {
			return false, err
		}

		log.Info("Verification code required")
		if opts.Codes == nil {
			return false, errs.New(errs.ErrorTypeAuth, "verification code required but no code provider configured")
		}
		code, err := opts.Codes.Code(ctx, codePrompt)
		if err != nil {
			return false, err
		}
		if err := page.SetValue(ctx, codeInput, code); err != nil {
			return false, err
		}
		if err := page.Submit(ctx, codeInput); err != nil {
			return false, err
		}
		codeSent = true
		log.Info("Verification code submitted")
		return false, nil
	})

	switch {
	case err == nil:
		log.Info("Login successful")
		return nil
	case ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded):
		return errs.New(errs.ErrorTypeAuth, fmt.Sprintf("login did not complete within %s", opts.Timeout))
	default:
		return authError(err, "login")
	}
}

// authError keeps fatal and cancellation errors as they are
func authError(err error, op string) error {
	if errs.IsFatal(err) || errors.Is(err, context.Canceled) {
		return err
	}
	if errs.IsType(err, errs.ErrorTypeAuth) {
		return err
	}
	return errs.Wrap(errs.ErrorTypeAuth, err, op)
}

// poll calls check every interval until it reports done, fails, or timeout
// elapses
func poll(ctx context.Context, timeout, interval time.Duration, check func(context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
