package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrInterrupted is returned when a prompt is aborted.
var ErrInterrupted = errors.New("interrupted")

// Prompter reads interactive answers. Secrets are read without echo when the
// input is a terminal.
type Prompter struct {
	in     *bufio.Reader
	fd     int
	isTerm bool
	out    io.Writer
}

// NewPrompter creates a Prompter on stdin.
func NewPrompter(out io.Writer) *Prompter {
	fd := int(os.Stdin.Fd())
	return &Prompter{
		in:     bufio.NewReader(os.Stdin),
		fd:     fd,
		isTerm: term.IsTerminal(fd),
		out:    out,
	}
}

// NewReaderPrompter creates a Prompter over a plain reader, for piped input.
func NewReaderPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		fd:  -1,
		out: out,
	}
}

// Line prompts for a visible answer.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

// Secret prompts for an answer that is not echoed.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.isTerm {
		return p.readLine()
	}

	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInterrupted, err)
	}
	return string(b), nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
