// Package prompt asks the user for file locations.
//
// On a terminal the question is shown as a bubbletea text input; otherwise
// answers are read line by line, so piped and scripted runs behave the same
// as an interactive one.
package prompt

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

// Questions asked by the join command, in order.
const (
	InputQuestion  = "Enter the location of the user input file: "
	OutputQuestion = "Enter the location to save the output file: "
)

// ErrCancelled is returned when the user aborts a prompt or input ends
// before an answer is given.
var ErrCancelled = errors.New("prompt cancelled")

// Prompter asks a question and returns the trimmed, non-empty answer.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// New returns a TUI prompter when in is a terminal and a line prompter
// otherwise.
func New(in *os.File, out io.Writer) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return NewTUI(in, out)
	}
	return NewLine(in, out)
}

// Line reads answers from a line-oriented reader.
type Line struct {
	r *bufio.Reader
	w io.Writer
}

// NewLine creates a line prompter reading from r and writing questions to w.
func NewLine(r io.Reader, w io.Writer) *Line {
	return &Line{r: bufio.NewReader(r), w: w}
}

// Ask writes question and returns the first non-blank line read.
func (p *Line) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(p.w, question); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	for {
		line, err := p.r.ReadString('\n')
		if answer := strings.TrimSpace(line); answer != "" {
			return answer, nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		if err != nil {
			return "", fmt.Errorf("reading answer: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
}

// Paths asks for the feature-list location, then the output location.
func Paths(ctx context.Context, p Prompter) (input, output string, err error) {
	if input, err = p.Ask(ctx, InputQuestion); err != nil {
		return "", "", err
	}
	if output, err = p.Ask(ctx, OutputQuestion); err != nil {
		return "", "", err
	}
	return input, output, nil
}
