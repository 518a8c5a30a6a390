// Package prompt reads operator input and writes status lines for the
// interactive client.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Status colors
var (
	Good  = color.New(color.FgGreen)
	Bad   = color.New(color.FgRed)
	Warn  = color.New(color.FgYellow)
	Info  = color.New(color.FgCyan)
	Faint = color.New(color.FgHiBlack)
)

// Console is a line-oriented terminal.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	fd       int
	terminal bool
}

// New returns a Console reading from in and writing to out. When in is a
// terminal, secrets are read without echo.
func New(in io.Reader, out io.Writer) *Console {
	c := &Console{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
		c.terminal = true
	}
	return c
}

// ReadLine prints label and returns the next line with surrounding blanks
// removed. It returns io.EOF once input is exhausted.
func (c *Console) ReadLine(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.readRaw()
	return strings.TrimSpace(line), err
}

// ReadSecret prints label and reads a line without echoing it when possible.
// Only the line terminator is stripped.
func (c *Console) ReadSecret(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.terminal {
		return c.readRaw()
	}

	b, err := term.ReadPassword(c.fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(b), nil
}

func (c *Console) readRaw() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		} else {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Println writes an uncolored line.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Printf writes uncolored formatted output.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Status writes a line in the given color.
func (c *Console) Status(col *color.Color, format string, a ...any) {
	col.Fprintf(c.out, format+"\n", a...)
}
