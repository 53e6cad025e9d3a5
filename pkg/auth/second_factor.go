package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// SecondFactorProvider supplies the verification code the platform asks for
// after a password login
type SecondFactorProvider interface {
	Code(ctx context.Context, prompt string) (string, error)
}

// ErrNoCode is returned when the provider has nothing to offer
var ErrNoCode = errors.New("no verification code provided")

// StaticCode always answers with the same code. An empty code yields ErrNoCode.
type StaticCode string

func (s StaticCode) Code(context.Context, string) (string, error) {
	code := strings.TrimSpace(string(s))
	if code == "" {
		return "", ErrNoCode
	}
	return code, nil
}

// TerminalPrompt asks the operator on the console. The reader is shared with
// the rest of the CLI so buffered input is not lost between prompts.
//
// At most one read from in is in flight. A read abandoned by a cancelled Code
// is handed to the next prompt instead of racing a fresh one.
type TerminalPrompt struct {
	in  *bufio.Reader
	out io.Writer

	mu      sync.Mutex
	pending chan answer
}

type answer struct {
	line string
	err  error
}

func NewTerminalPrompt(in *bufio.Reader, out io.Writer) *TerminalPrompt {
	return &TerminalPrompt{in: in, out: out}
}

// Code prints prompt and reads one line. It gives up when ctx is done.
func (t *TerminalPrompt) Code(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		prompt = "Verification code"
	}
	fmt.Fprintf(t.out, "%s: ", prompt)

	line, err := t.read(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		fmt.Fprintln(t.out)
		return "", err
	}
	code := strings.TrimSpace(line)
	if code == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", ErrNoCode
	}
	return code, nil
}

// ReadLine prints label and returns the trimmed answer
func (t *TerminalPrompt) ReadLine(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.read(context.Background())
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return strings.TrimSpace(line), err
	}
	return strings.TrimSpace(line), nil
}

// read returns the next line, reusing a read left over from a cancelled call
func (t *TerminalPrompt) read(ctx context.Context) (string, error) {
	t.mu.Lock()
	ch := t.pending
	t.pending = nil
	if ch == nil {
		ch = make(chan answer, 1)
		go func() {
			line, err := t.in.ReadString('\n')
			ch <- answer{line, err}
		}()
	}
	t.mu.Unlock()

	select {
	case <-ctx.Done():
		t.mu.Lock()
		t.pending = ch
		t.mu.Unlock()
		return "", ctx.Err()
	case a := <-ch:
		return a.line, a.err
	}
}

func (t *TerminalPrompt) hasPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// ReadSecret is ReadLine without echo when stdin is a terminal
func (t *TerminalPrompt) ReadSecret(label string) (string, error) {
	// a raw-mode read would compete with the pending line read
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) || t.hasPending() {
		return t.ReadLine(label)
	}

	fmt.Fprint(t.out, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
