package collect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks questions on w and reads one-line answers from r.
// It is the single reader of the interactive input.
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewPrompter creates a prompter over r and w
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		r: bufio.NewReader(r),
		w: w,
	}
}

// Writer returns the output side of the prompter
func (p *Prompter) Writer() io.Writer {
	return p.w
}

// Say writes a line of output
func (p *Prompter) Say(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Ask prints label and returns the trimmed answer.
// io.EOF is returned only when the input ends before any answer text.
func (p *Prompter) Ask(label string) (string, error) {
	if label != "" {
		fmt.Fprint(p.w, label)
	}

	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a y/n question; only "y" or "yes" is a yes
func (p *Prompter) Confirm(label string) (bool, error) {
	answer, err := p.Ask(label)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
