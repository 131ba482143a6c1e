package host

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Console connects a machine to a text stream.
//
// In ASCII mode input is read a line at a time and fed as character codes
// followed by a newline, and outputs in the ASCII range are written as
// characters. Other outputs, and all values in numeric mode, are written
// in decimal, one per line.
type Console struct {
	ASCII bool

	in   *bufio.Reader
	out  io.Writer
	line []byte
	col  int // characters written since the last newline
}

// NewConsole returns a Console reading from r and writing to w.
func NewConsole(r io.Reader, w io.Writer, ascii bool) *Console {
	return &Console{ASCII: ascii, in: bufio.NewReader(r), out: w}
}

// Read returns the next input value.
func (c *Console) Read() (int64, error) {
	if c.ASCII {
		return c.readChar()
	}
	return c.readNumber()
}

func (c *Console) readChar() (int64, error) {
	if len(c.line) == 0 {
		s, err := c.in.ReadString('\n')
		if s == "" && err != nil {
			return 0, err
		}
		s = strings.TrimRight(s, "\r\n")
		c.line = append([]byte(s), '\n')
	}
	b := c.line[0]
	c.line = c.line[1:]
	return int64(b), nil
}

func (c *Console) readNumber() (int64, error) {
	var tok []byte
	for {
		b, err := c.in.ReadByte()
		if err != nil {
			if len(tok) > 0 && err == io.EOF {
				break
			}
			return 0, err
		}
		if b == ',' || b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			if len(tok) > 0 {
				break
			}
			continue
		}
		tok = append(tok, b)
	}
	v, err := strconv.ParseInt(string(tok), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("console: bad input %q: %w", tok, err)
	}
	return v, nil
}

// Write writes one output value.
func (c *Console) Write(v int64) error {
	var err error
	if c.ASCII && v >= 0 && v < 0x80 {
		_, err = c.out.Write([]byte{byte(v)})
		if v == '\n' {
			c.col = 0
		} else {
			c.col++
		}
		return err
	}
	if c.col > 0 {
		// Keep numbers off the end of a partial text line.
		if _, err = io.WriteString(c.out, "\n"); err != nil {
			return err
		}
		c.col = 0
	}
	_, err = fmt.Fprintf(c.out, "%d\n", v)
	return err
}
