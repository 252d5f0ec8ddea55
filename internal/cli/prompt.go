package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

const dateLayout = "2006-01-02"

// Prompter reads user input line by line. Secrets are read without echo when
// stdin is a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Prompter) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Int re-prompts until the input parses as an integer.
func (p *Prompter) Int(label string) (int, error) {
	for {
		line, err := p.Line(label)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil {
			p.Println("Invalid input, please enter a number.")
			continue
		}
		return n, nil
	}
}

// Date re-prompts until the input parses as YYYY-MM-DD.
func (p *Prompter) Date(label string) (time.Time, error) {
	for {
		line, err := p.Line(label)
		if err != nil {
			return time.Time{}, err
		}
		t, convErr := time.Parse(dateLayout, line)
		if convErr != nil {
			p.Println("Invalid date, please use YYYY-MM-DD.")
			continue
		}
		return t, nil
	}
}

// Secret reads a password without echoing when stdin is a terminal, falling
// back to a plain line read otherwise (tests, piped input).
func (p *Prompter) Secret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if f, ok := p.out.(*os.File); ok && term.IsTerminal(fd) && f == os.Stdout {
		fmt.Fprint(p.out, label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.Line(label)
}

// Confirm accepts yes/no; anything else counts as no.
func (p *Prompter) Confirm(label string) (bool, error) {
	line, err := p.Line(label)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(line, "yes") || strings.EqualFold(line, "y"), nil
}
