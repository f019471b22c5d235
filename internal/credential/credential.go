// Package credential supplies the GitHub token to the run. Tokens are never
// taken from flags or the environment.
package credential

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Provider returns the token to authenticate with.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// ErrEmptyToken is returned when the user enters nothing.
var ErrEmptyToken = errors.New("no authorization token entered")

// Static is a Provider with a fixed token.
type Static string

func (s Static) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrEmptyToken
	}
	return string(s), nil
}

// Prompt asks for the token on In without echoing it. When In is not a
// terminal a single line is read instead, so the token can be piped in.
type Prompt struct {
	In     *os.File
	Out    io.Writer
	Prompt string
}

// NewPrompt prompts on stdin/stderr.
func NewPrompt() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stderr, Prompt: "Auth. Token:"}
}

// Token blocks until a line is entered or ctx is done. On cancellation the
// terminal is put back into its original mode; the pending read is abandoned.
func (p *Prompt) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.Out, p.Prompt)
	defer fmt.Fprintln(p.Out)

	fd := int(p.In.Fd())
	var state *term.State
	if term.IsTerminal(fd) {
		var err error
		if state, err = term.GetState(fd); err != nil {
			return "", fmt.Errorf("failed to read terminal state: %w", err)
		}
	}

	type line struct {
		raw string
		err error
	}
	read := make(chan line, 1)
	go func() {
		raw, err := p.readLine(fd, state != nil)
		read <- line{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		if state != nil {
			_ = term.Restore(fd, state)
		}
		return "", ctx.Err()
	case l := <-read:
		if l.err != nil {
			return "", fmt.Errorf("failed to read token: %w", l.err)
		}
		token := strings.TrimSpace(l.raw)
		if token == "" {
			return "", ErrEmptyToken
		}
		return token, nil
	}
}

func (p *Prompt) readLine(fd int, terminal bool) (string, error) {
	if terminal {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}
