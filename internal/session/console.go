package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LinePrompter reads newline-terminated answers from r, echoing prompt
// labels to w without a trailing newline.
type LinePrompter struct {
	r *bufio.Reader
	w io.Writer
}

func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{
		r: bufio.NewReader(r),
		w: w,
	}
}

var _ Prompter = (*LinePrompter)(nil)

// Prompt shows the label and blocks for one line of input. A final line
// without a newline still counts; end of input with nothing read is an error.
func (p *LinePrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.w, label)

	line, err := p.r.ReadString('\n')
	if err != nil && (line == "" || err != io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
